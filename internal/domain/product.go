package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the catalog. The order engine only ever writes the
// stock_qty column, and only through the reservation path.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Grade     string          `json:"grade,omitempty"`
	Origin    string          `json:"origin,omitempty"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	StockQty  int             `json:"stockQty"`
	IsActive  bool            `json:"isActive"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
