package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"thriftmart/internal/metrics"
	"thriftmart/internal/model"
	"thriftmart/internal/pricing"
	"thriftmart/internal/promo"
)

// promoService implements PromoService. Unlike checkout, the preview
// distinguishes an invalid-or-expired code from a below-minimum cart so the
// storefront can tell the shopper how far they are from the threshold.
type promoService struct {
	promos promo.Evaluator
	logger zerolog.Logger
}

// NewPromoService creates a promo preview service.
func NewPromoService(promos promo.Evaluator, logger zerolog.Logger) PromoService {
	return &promoService{
		promos: promos,
		logger: logger.With().Str("service", "promo").Logger(),
	}
}

// Preview evaluates the code against the candidate cart total. Rule failures
// come back as a non-valid preview, not as an error; only infrastructure
// failures surface as errors.
func (s *promoService) Preview(ctx context.Context, code string, cartTotal decimal.Decimal) (*model.PromoPreview, error) {
	discount, err := s.promos.Evaluate(ctx, code, cartTotal)
	if err != nil {
		var belowMin *promo.BelowMinimumError
		switch {
		case errors.Is(err, promo.ErrInvalidOrExpired):
			metrics.PromoValidationsTotal.WithLabelValues("invalid").Inc()
			return &model.PromoPreview{
				Valid:  false,
				Detail: "Invalid or expired promo code",
			}, nil
		case errors.As(err, &belowMin):
			metrics.PromoValidationsTotal.WithLabelValues("below_minimum").Inc()
			return &model.PromoPreview{
				Valid:  false,
				Detail: fmt.Sprintf("Minimum order value of $%s required", belowMin.Minimum.StringFixed(2)),
			}, nil
		}
		metrics.PromoValidationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to validate promo code: %w", err)
	}

	discountType := "amount"
	if discount.Kind == pricing.KindPercentage {
		discountType = "percentage"
	}

	metrics.PromoValidationsTotal.WithLabelValues("valid").Inc()
	return &model.PromoPreview{
		Valid:         true,
		Discount:      discount.AmountFor(cartTotal),
		DiscountType:  discountType,
		DiscountValue: discount.Value,
	}, nil
}
