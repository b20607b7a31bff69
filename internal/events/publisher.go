// Package events publishes domain events for downstream consumers
// (fulfilment, notifications, analytics). Publishing is best effort: a
// failed publish is logged, never surfaced to the checkout caller.
package events

import (
	"context"
	"time"
)

// OrderCreated is emitted once per successfully committed checkout.
type OrderCreated struct {
	OrderNumber   string    `json:"order_number"`
	UserID        string    `json:"user_id"`
	Subtotal      string    `json:"subtotal"`
	PromoCode     string    `json:"promo_code,omitempty"`
	PromoDiscount string    `json:"promo_discount"`
	Total         string    `json:"total"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Publisher emits order lifecycle events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreated) error
	Close() error
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, OrderCreated) error { return nil }
func (NopPublisher) Close() error                                            { return nil }
