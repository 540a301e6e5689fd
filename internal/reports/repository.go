package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type TopProduct struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	TotalQty     int             `json:"totalQty"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// TopProducts ranks products by units sold over the trailing window.
// Cancelled orders are excluded; their reservations were intentional at the
// time but they never shipped.
func (r *Repository) TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, p.name, p.unit,
		       SUM(oi.quantity) AS total_qty,
		       SUM(oi.quantity * oi.unit_price) AS total_revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= now() - make_interval(days => $1)
		  AND o.status <> 'CANCELLED'
		GROUP BY oi.product_id, p.name, p.unit
		ORDER BY total_qty DESC
		LIMIT $2
	`, days, limit)
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []TopProduct{}
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.Unit, &tp.TotalQty, &tp.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

type LowStockProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	StockQty  int    `json:"stockQty"`
}

// LowStock lists active products at or below the threshold, emptiest first.
func (r *Repository) LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, unit, stock_qty
		FROM products
		WHERE is_active AND stock_qty <= $1
		ORDER BY stock_qty ASC, name
	`, threshold)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []LowStockProduct{}
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Unit, &p.StockQty); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type DailySummary struct {
	Date         string          `json:"date"`
	OrderCount   int             `json:"orderCount"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// DailySummaries aggregates order volume and revenue per calendar day over
// the trailing window, newest day first.
func (r *Repository) DailySummaries(ctx context.Context, days int) ([]DailySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*) AS order_count,
		       COALESCE(SUM(total_amount), 0) AS total_revenue
		FROM orders
		WHERE created_at >= now() - make_interval(days => $1)
		  AND status <> 'CANCELLED'
		GROUP BY day
		ORDER BY day DESC
	`, days)
	if err != nil {
		return nil, fmt.Errorf("query daily summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []DailySummary{}
	for rows.Next() {
		var (
			day time.Time
			ds  DailySummary
		)
		if err := rows.Scan(&day, &ds.OrderCount, &ds.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan daily summary: %w", err)
		}
		ds.Date = day.Format("2006-01-02")
		out = append(out, ds)
	}
	return out, rows.Err()
}
