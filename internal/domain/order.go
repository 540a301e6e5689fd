package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers (12.50, not "12.50").
	decimal.MarshalJSONWithoutQuotes = true
}

type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusPicking   Status = "PICKING"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses is the accepted input set for status updates, in lifecycle order.
var AllStatuses = []Status{StatusReceived, StatusPicking, StatusDelivered, StatusCancelled}

// ParseStatus validates a raw status value. Unknown values are a validation
// failure and are never stored.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	for _, known := range AllStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", &ValidationError{Field: "status", Message: "status must be one of: RECEIVED, PICKING, DELIVERED, CANCELLED"}
}

var validNext = map[Status]map[Status]bool{
	StatusReceived:  {StatusPicking: true, StatusCancelled: true},
	StatusPicking:   {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether the fulfillment graph allows moving an order
// from one status to another. DELIVERED and CANCELLED are terminal.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

type Order struct {
	ID           string          `json:"id"`
	BuyerID      string          `json:"buyerId"`
	BuyerName    string          `json:"buyerName,omitempty"`
	BuyerCompany string          `json:"buyerCompany,omitempty"`
	Status       Status          `json:"status"`
	DeliveryDate string          `json:"deliveryDate"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	CreatedAt    time.Time       `json:"createdAt"`
	Items        []OrderItem     `json:"items"`
}

// OrderItem is one line within an order. UnitPrice is the product price
// snapshotted when the order was admitted; it never changes afterwards.
type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// LineTotal is quantity times the snapshotted unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
