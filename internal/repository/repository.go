package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"thriftmart/internal/model"
)

// ErrOrderNumberTaken is returned by CreateOrder when the generated order
// number collides with an existing one. The caller is expected to retry the
// whole checkout transaction with a fresh number.
var ErrOrderNumberTaken = errors.New("order number already exists")

// CartRepository defines the cart data access the checkout transaction needs.
type CartRepository interface {
	// SnapshotForUpdate reads all of the user's cart rows joined to the
	// current product price, locking the cart rows until the surrounding
	// transaction ends. Concurrent checkouts for the same user serialize on
	// this lock, so the same cart row can never be spent into two orders.
	SnapshotForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error)

	// DeleteByIDs removes exactly the given cart rows within the transaction.
	DeleteByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error
}

// PromoCodeRepository defines read-only promo code lookup.
type PromoCodeRepository interface {
	// FindByCode returns the record for the exact code, or (nil, nil) when
	// absent.
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// Returns ErrOrderNumberTaken on an order number uniqueness violation.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line items within the transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByNumber retrieves an order owned by the given user along with its
	// items. Returns (nil, nil, nil) when no such order exists.
	GetByNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*model.Order, []model.OrderItem, error)
}
