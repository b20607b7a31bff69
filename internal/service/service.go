package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"thriftmart/internal/model"
)

// CheckoutService converts a user's cart into an immutable, priced order.
type CheckoutService interface {
	// Checkout snapshots the caller's cart, prices it, validates the optional
	// promo code, persists the order and clears the cart as one atomic unit.
	// idempotencyKey may be empty; when set and previously seen, the order it
	// produced is returned instead of creating a new one.
	Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest, idempotencyKey string) (*model.OrderResponse, error)

	// GetByNumber retrieves one of the caller's orders with its items.
	// Returns (nil, nil) when no such order exists.
	GetByNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*model.OrderResponse, error)
}

// PromoService previews a promo code against a candidate cart total without
// placing an order.
type PromoService interface {
	Preview(ctx context.Context, code string, cartTotal decimal.Decimal) (*model.PromoPreview, error)
}
