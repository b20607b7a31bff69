package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromoCode is a time-windowed, optionally threshold-gated discount token.
// DiscountPercentage takes precedence over DiscountAmount when both are set.
// Read-only from checkout's perspective.
type PromoCode struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Code               string          `json:"code" db:"code"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	DiscountPercentage int             `json:"discount_percentage" db:"discount_percentage"`
	ValidFrom          time.Time       `json:"valid_from" db:"valid_from"`
	ValidTo            time.Time       `json:"valid_to" db:"valid_to"`
	IsActive           bool            `json:"is_active" db:"is_active"`
	MinimumOrderValue  decimal.Decimal `json:"minimum_order_value" db:"minimum_order_value"`
}

// PromoPreview is the outcome of validating a promo code against a candidate
// cart total without placing an order.
type PromoPreview struct {
	Valid         bool
	Detail        string
	Discount      decimal.Decimal
	DiscountType  string // "percentage" or "amount"
	DiscountValue decimal.Decimal
}
