package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a mutable row in a user's cart. Duplicate rows for the same
// product are allowed; each row is priced independently at checkout.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

// CartLine is a cart row resolved to the product's current price. The set of
// lines read under lock at the start of checkout is the cart snapshot: it is
// used unchanged through pricing and order persistence.
type CartLine struct {
	CartItemID uuid.UUID
	ProductID  string
	UnitPrice  decimal.Decimal
	Quantity   int
}
