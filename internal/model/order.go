package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the order lifecycle state. Checkout only ever creates
// pending orders; transitions are handled elsewhere.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is an immutable, priced record materialized from a cart at checkout.
// Totals are computed once at creation and never recomputed:
// total = subtotal + shipping_cost - promo_discount (floored at zero) and
// subtotal = sum(item.price * item.quantity) over the order's items.
type Order struct {
	ID              uuid.UUID       `json:"-" db:"id"`
	OrderNumber     string          `json:"order_number" db:"order_number"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	ShippingCost    decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	PromoCode       *string         `json:"promo_code,omitempty" db:"promo_code"`
	PromoDiscount   decimal.Decimal `json:"promo_discount" db:"promo_discount"`
	Total           decimal.Decimal `json:"total" db:"total"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is a line item belonging to exactly one order. Price is the unit
// price copied from the product at checkout time, so later catalogue price
// changes never alter the order's totals.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"product_id" db:"product_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// CheckoutRequest is the payload of POST /api/orders.
type CheckoutRequest struct {
	ShippingAddress string          `json:"shipping_address"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	PromoCode       *string         `json:"promo_code,omitempty"`
}

// OrderResponse is the payload returned for a placed or retrieved order.
type OrderResponse struct {
	Order *Order      `json:"order"`
	Items []OrderItem `json:"items"`
}
