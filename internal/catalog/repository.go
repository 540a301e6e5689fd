package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/producemart/wholesale-api/internal/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, grade, origin, unit, image_url, price, stock_qty, is_active, created_at`

func (r *ProductRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name`)
}

// ListAll includes deactivated products; used by the admin views.
func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.New().String()
	p.IsActive = true
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, grade, origin, unit, image_url, price, stock_qty, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, p.ID, p.Name, nullable(p.Grade), nullable(p.Origin), p.Unit, nullable(p.ImageURL),
		p.Price, p.StockQty, p.IsActive).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// ProductUpdate is a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name     *string
	Grade    *string
	Origin   *string
	Unit     *string
	ImageURL *string
	Price    *decimal.Decimal
	StockQty *int
	IsActive *bool
}

// buildUpdate assembles the SET clause from the non-nil fields. The id is
// always the last placeholder.
func buildUpdate(id string, u ProductUpdate) (string, []any) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Grade != nil {
		add("grade", nullable(*u.Grade))
	}
	if u.Origin != nil {
		add("origin", nullable(*u.Origin))
	}
	if u.Unit != nil {
		add("unit", *u.Unit)
	}
	if u.ImageURL != nil {
		add("image_url", nullable(*u.ImageURL))
	}
	if u.Price != nil {
		add("price", *u.Price)
	}
	if u.StockQty != nil {
		add("stock_qty", *u.StockQty)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}

	if len(sets) == 0 {
		return "", nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}

func (r *ProductRepository) Update(ctx context.Context, id string, u ProductUpdate) (*domain.Product, error) {
	query, args := buildUpdate(id, u)
	if query == "" {
		return r.GetByID(ctx, id)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}

	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes: the product disappears from the buyer catalog but
// existing order items keep their join target.
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p             domain.Product
		grade, origin sql.NullString
		imageURL      sql.NullString
		createdAt     time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &grade, &origin, &p.Unit, &imageURL,
		&p.Price, &p.StockQty, &p.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Grade = grade.String
	p.Origin = origin.String
	p.ImageURL = imageURL.String
	p.CreatedAt = createdAt
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
