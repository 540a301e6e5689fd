package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderCreated       = "orders.created"
	TopicOrderStatusChanged = "orders.status_changed"
)

type OrderCreatedEvent struct {
	OrderID      string          `json:"order_id"`
	BuyerID      string          `json:"buyer_id"`
	BuyerEmail   string          `json:"buyer_email"`
	DeliveryDate string          `json:"delivery_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Items        []OrderItem     `json:"items"`
	Timestamp    time.Time       `json:"timestamp"`
}

type OrderStatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	BuyerID   string    `json:"buyer_id"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
