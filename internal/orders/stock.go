package orders

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/producemart/wholesale-api/internal/domain"
)

// lockOrder returns line indexes sorted by product id. Reserving in one
// canonical order across all transactions prevents lock-order deadlocks when
// concurrent submissions share products.
func lockOrder(items []LineInput) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return items[order[a]].ProductID < items[order[b]].ProductID
	})
	return order
}

// reserveLine performs the check-and-decrement for one line item inside the
// caller's transaction. The FOR UPDATE lock serializes concurrent
// reservations per product row, so the quantity read here is the latest
// committed value for the duration of the decrement.
func reserveLine(ctx context.Context, tx *sql.Tx, line LineInput) (*domain.OrderItem, error) {
	var (
		name     string
		unit     string
		imageURL sql.NullString
		price    decimal.Decimal
		stock    int
	)
	err := tx.QueryRowContext(ctx, `
		SELECT name, unit, image_url, price, stock_qty
		FROM products
		WHERE id = $1 AND is_active
		FOR UPDATE
	`, line.ProductID).Scan(&name, &unit, &imageURL, &price, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "product", ID: line.ProductID}
	}
	if err != nil {
		return nil, storageErr("lock product row", err)
	}

	if stock < line.Quantity {
		return nil, &domain.InsufficientStockError{
			ProductName: name,
			Requested:   line.Quantity,
			Available:   stock,
			Unit:        unit,
		}
	}

	// The stock_qty >= $2 guard keeps the column non-negative even if the
	// surrounding locking discipline ever changes.
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock_qty = stock_qty - $2
		WHERE id = $1 AND stock_qty >= $2
	`, line.ProductID, line.Quantity)
	if err != nil {
		return nil, storageErr("decrement stock", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return nil, &domain.InsufficientStockError{
			ProductName: name,
			Requested:   line.Quantity,
			Available:   stock,
			Unit:        unit,
		}
	}

	return &domain.OrderItem{
		ID:          uuid.New().String(),
		ProductID:   line.ProductID,
		ProductName: name,
		ImageURL:    imageURL.String,
		Quantity:    line.Quantity,
		UnitPrice:   price,
	}, nil
}
