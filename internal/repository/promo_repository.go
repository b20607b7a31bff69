package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"thriftmart/internal/model"
)

// promoCodeRepository implements PromoCodeRepository using PostgreSQL.
type promoCodeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromoCodeRepository creates a new PostgreSQL-backed promo code repository.
func NewPromoCodeRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromoCodeRepository {
	return &promoCodeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promo_code").Logger(),
	}
}

// FindByCode fetches a promo code record by exact code match. Activation and
// window checks are the evaluator's job; the lookup stays a plain read.
func (r *promoCodeRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	query := `
		SELECT id, code, discount_amount, discount_percentage,
		       valid_from, valid_to, is_active, minimum_order_value
		FROM promo_codes
		WHERE code = $1
	`

	var promo model.PromoCode
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&promo.ID,
		&promo.Code,
		&promo.DiscountAmount,
		&promo.DiscountPercentage,
		&promo.ValidFrom,
		&promo.ValidTo,
		&promo.IsActive,
		&promo.MinimumOrderValue,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("code", code).Msg("promo code not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query promo code")
		return nil, fmt.Errorf("failed to query promo code: %w", err)
	}

	return &promo, nil
}
