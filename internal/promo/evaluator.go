// Package promo validates promo codes against their activation flag, time
// window and minimum-order threshold, and resolves the discount they grant.
package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"thriftmart/internal/model"
	"thriftmart/internal/pricing"
)

// ErrInvalidOrExpired is returned when a code does not exist, is inactive,
// or is outside its validity window. The three cases are deliberately
// indistinguishable so callers cannot probe which codes exist.
var ErrInvalidOrExpired = errors.New("invalid or expired promo code")

// BelowMinimumError is returned when the code is valid but the order
// subtotal does not reach the code's minimum order value.
type BelowMinimumError struct {
	Minimum decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum order value of $%s required", e.Minimum.StringFixed(2))
}

// Repository looks up promo code records by exact code.
type Repository interface {
	// FindByCode returns the promo code record, or (nil, nil) when no record
	// with that code exists.
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
}

// Evaluator validates a promo code against an order subtotal and returns the
// discount to feed the pricing engine.
type Evaluator interface {
	Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (pricing.Discount, error)
}

// RuleEvaluator implements Evaluator using a Repository lookup. It is
// read-only: evaluation never mutates the promo code record.
type RuleEvaluator struct {
	repo   Repository
	now    func() time.Time
	logger zerolog.Logger
}

// NewEvaluator creates a RuleEvaluator backed by the given repository.
func NewEvaluator(repo Repository, logger zerolog.Logger) *RuleEvaluator {
	return &RuleEvaluator{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "promo-evaluator").Logger(),
	}
}

// Evaluate checks the code and returns its resolved discount. Both window
// bounds are inclusive. Percentage takes precedence when a record carries
// both a percentage and a flat amount.
func (e *RuleEvaluator) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (pricing.Discount, error) {
	promo, err := e.repo.FindByCode(ctx, code)
	if err != nil {
		return pricing.Discount{}, fmt.Errorf("lookup promo code: %w", err)
	}

	now := e.now()
	if promo == nil || !promo.IsActive || now.Before(promo.ValidFrom) || now.After(promo.ValidTo) {
		e.logger.Debug().Str("code", code).Msg("promo code invalid or expired")
		return pricing.Discount{}, ErrInvalidOrExpired
	}

	if subtotal.LessThan(promo.MinimumOrderValue) {
		e.logger.Debug().
			Str("code", code).
			Str("subtotal", subtotal.StringFixed(2)).
			Str("minimum", promo.MinimumOrderValue.StringFixed(2)).
			Msg("subtotal below promo minimum")
		return pricing.Discount{}, &BelowMinimumError{Minimum: promo.MinimumOrderValue}
	}

	if promo.DiscountPercentage > 0 {
		return pricing.PercentageDiscount(decimal.NewFromInt(int64(promo.DiscountPercentage))), nil
	}
	return pricing.FlatDiscount(promo.DiscountAmount), nil
}
