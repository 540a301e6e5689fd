package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/producemart/wholesale-api/internal/domain"
)

const dateLayout = "2006-01-02"

type LineInput struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	BuyerID      string
	DeliveryDate string
	Items        []LineInput
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create admits one order: every line item is reserved against stock and the
// order header plus item rows are written, all inside a single transaction.
// Any failure rolls the whole submission back; no partial state survives.
func (r *OrderRepository) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Rows are locked in canonical product order; items keep their
	// submission positions for line numbering.
	items := make([]domain.OrderItem, len(in.Items))
	for _, idx := range lockOrder(in.Items) {
		item, err := reserveLine(ctx, tx, in.Items[idx])
		if err != nil {
			return nil, err
		}
		items[idx] = *item
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}

	orderID := uuid.New().String()
	var createdAt time.Time
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, buyer_id, status, delivery_date, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, orderID, in.BuyerID, domain.StatusReceived, in.DeliveryDate, total).Scan(&createdAt)
	if err != nil {
		return nil, storageErr("insert order", err)
	}

	for i, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, line_no, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, orderID, item.ProductID, i+1, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, storageErr("insert order item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit order", err)
	}

	return r.GetByID(ctx, orderID)
}

// UpdateStatus applies one lifecycle transition under a row lock so
// concurrent updates cannot interleave between the read and the write.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, to domain.Status) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var from domain.Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return nil, storageErr("lock order row", err)
	}

	if !domain.CanTransition(from, to) {
		return nil, &domain.TransitionError{From: from, To: to}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, to); err != nil {
		return nil, storageErr("update status", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit status update", err)
	}

	return r.GetByID(ctx, id)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.buyer_id, u.name, u.company_name, o.status, o.delivery_date, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		WHERE o.id = $1
	`, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return nil, storageErr("query order", err)
	}

	itemsByOrder, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.Items = itemsByOrder[id]

	return order, nil
}

// List returns every order, newest first, with items attached in one
// batched fetch.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT o.id, o.buyer_id, u.name, u.company_name, o.status, o.delivery_date, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		ORDER BY o.created_at DESC
	`)
}

// ListByBuyer is List scoped to one buyer.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT o.id, o.buyer_id, u.name, u.company_name, o.status, o.delivery_date, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		WHERE o.buyer_id = $1
		ORDER BY o.created_at DESC
	`, buyerID)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query orders", err)
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, storageErr("scan order", err)
		}
		orderMap[order.ID] = order
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate orders", err)
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemsByOrder, err := r.loadItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		order := orderMap[id]
		order.Items = itemsByOrder[id]
		orders = append(orders, *order)
	}

	return orders, nil
}

// loadItems fetches the item views for a set of orders in one query instead
// of one per order. Every requested id gets an entry, empty when the order
// has no items.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	byOrder := make(map[string][]domain.OrderItem, len(orderIDs))
	for _, id := range orderIDs {
		byOrder[id] = []domain.OrderItem{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.order_id, oi.id, oi.product_id, p.name, p.image_url, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.line_no
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, storageErr("query order items", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			orderID  string
			item     domain.OrderItem
			imageURL sql.NullString
		)
		if err := rows.Scan(&orderID, &item.ID, &item.ProductID, &item.ProductName, &imageURL, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, storageErr("scan order item", err)
		}
		item.ImageURL = imageURL.String
		byOrder[orderID] = append(byOrder[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate order items", err)
	}

	return byOrder, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order        domain.Order
		company      sql.NullString
		deliveryDate time.Time
	)
	err := row.Scan(&order.ID, &order.BuyerID, &order.BuyerName, &company, &order.Status,
		&deliveryDate, &order.TotalAmount, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	order.BuyerCompany = company.String
	order.DeliveryDate = deliveryDate.Format(dateLayout)
	order.Items = []domain.OrderItem{}
	return &order, nil
}

const deadlockDetected = "40P01"

// storageErr wraps storage failures; deadline, cancellation and aborted
// deadlock victims are surfaced as retryable unavailability.
func storageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, domain.ErrUnavailable)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == deadlockDetected {
		return fmt.Errorf("%s: %w", op, domain.ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
