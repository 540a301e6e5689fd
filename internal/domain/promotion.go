package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PromotionDaily   = "DAILY"
	PromotionWeekly  = "WEEKLY"
	PromotionMonthly = "MONTHLY"
)

type Promotion struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Type            string          `json:"type"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartDate       string          `json:"startDate,omitempty"`
	EndDate         string          `json:"endDate,omitempty"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
}
