package promotions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/producemart/wholesale-api/internal/domain"
)

const dateLayout = "2006-01-02"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const promotionColumns = `id, name, description, type, discount_percent, start_date, end_date, is_active, created_at`

// Filter narrows List; zero value means everything.
type Filter struct {
	Type       string
	ActiveOnly bool
}

func (r *Repository) List(ctx context.Context, f Filter) ([]domain.Promotion, error) {
	var conds []string
	var args []any

	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active")
	}

	query := `SELECT ` + promotionColumns + ` FROM promotions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	promos := []domain.Promotion{}
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		promos = append(promos, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}
	return promos, nil
}

// ListActiveByType feeds the daily catalog view.
func (r *Repository) ListActiveByType(ctx context.Context, promoType string) ([]domain.Promotion, error) {
	return r.List(ctx, Filter{Type: promoType, ActiveOnly: true})
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Promotion, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id)
	p, err := scanPromotion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "promotion", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("query promotion: %w", err)
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p *domain.Promotion) error {
	p.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO promotions (id, name, description, type, discount_percent, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, p.ID, p.Name, nullable(p.Description), p.Type, p.DiscountPercent,
		nullDate(p.StartDate), nullDate(p.EndDate), p.IsActive).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

// SetActive flips a promotion on or off.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) (*domain.Promotion, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE promotions SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return nil, fmt.Errorf("update promotion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, &domain.NotFoundError{Entity: "promotion", ID: id}
	}
	return r.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPromotion(row rowScanner) (*domain.Promotion, error) {
	var (
		p           domain.Promotion
		description sql.NullString
		start, end  sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &description, &p.Type, &p.DiscountPercent,
		&start, &end, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	if start.Valid {
		p.StartDate = start.Time.Format(dateLayout)
	}
	if end.Valid {
		p.EndDate = end.Time.Format(dateLayout)
	}
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
