package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"thriftmart/internal/events"
	"thriftmart/internal/idempotency"
	"thriftmart/internal/metrics"
	"thriftmart/internal/model"
	"thriftmart/internal/pricing"
	"thriftmart/internal/promo"
	"thriftmart/internal/repository"
)

// defaultOrderNumberRetries bounds how many times a checkout is re-attempted
// after an order number collision before giving up.
const defaultOrderNumberRetries = 3

// checkoutService implements CheckoutService.
type checkoutService struct {
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	promos      promo.Evaluator
	idempotency idempotency.Store // nil when disabled
	publisher   events.Publisher
	maxRetries  int
	logger      zerolog.Logger
}

// NewCheckoutService creates a checkout service. idemStore may be nil to
// disable idempotency-key handling; publisher may be events.NopPublisher{}.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	promos promo.Evaluator,
	idemStore idempotency.Store,
	publisher events.Publisher,
	maxRetries int,
	logger zerolog.Logger,
) CheckoutService {
	if maxRetries <= 0 {
		maxRetries = defaultOrderNumberRetries
	}
	return &checkoutService{
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		promos:      promos,
		idempotency: idemStore,
		publisher:   publisher,
		maxRetries:  maxRetries,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout runs the order-finalization transaction. Every abort path leaves
// the cart exactly as it was before the request.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest, idempotencyKey string) (*model.OrderResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		metrics.CheckoutsFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	// A replayed idempotency key returns the order it already produced.
	if idempotencyKey != "" && s.idempotency != nil {
		orderNumber, err := s.idempotency.Get(ctx, userID, idempotencyKey)
		if err != nil {
			// The store being unreachable degrades idempotency, not checkout.
			s.logger.Warn().Err(err).Msg("idempotency lookup failed, proceeding without replay")
		} else if orderNumber != "" {
			replay, replayErr := s.GetByNumber(ctx, userID, orderNumber)
			if replayErr == nil && replay != nil {
				s.logger.Info().
					Str("order_number", orderNumber).
					Str("idempotency_key", idempotencyKey).
					Msg("replaying checkout from idempotency key")
				metrics.IdempotentReplaysTotal.Inc()
				return replay, nil
			}
			// A recorded order that cannot be loaded degrades idempotency
			// the same way a store outage does: run a fresh checkout.
			s.logger.Warn().
				Err(replayErr).
				Str("order_number", orderNumber).
				Str("idempotency_key", idempotencyKey).
				Msg("recorded order for idempotency key not loadable, proceeding with fresh checkout")
		}
	}

	var resp *model.OrderResponse
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		resp, err = s.checkoutOnce(ctx, userID, req)
		if !errors.Is(err, repository.ErrOrderNumberTaken) {
			break
		}
		metrics.OrderNumberRetriesTotal.Inc()
		s.logger.Warn().Int("attempt", attempt+1).Msg("order number collision, retrying checkout")
	}
	if err != nil {
		if errors.Is(err, repository.ErrOrderNumberTaken) {
			metrics.CheckoutsFailedTotal.WithLabelValues("order_number_exhausted").Inc()
			return nil, model.ErrOrderNumberExhausted
		}
		switch {
		case errors.Is(err, model.ErrEmptyCart):
			metrics.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		case errors.Is(err, model.ErrInvalidPromoCode):
			metrics.CheckoutsFailedTotal.WithLabelValues("invalid_promo").Inc()
		default:
			metrics.CheckoutsFailedTotal.WithLabelValues("persistence").Inc()
		}
		return nil, err
	}

	s.afterCommit(ctx, userID, idempotencyKey, resp)

	return resp, nil
}

// checkoutOnce is one all-or-nothing attempt: a single database transaction
// covering cart snapshot, pricing, promo validation, order materialization
// and cart clearing.
func (s *checkoutService) checkoutOnce(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (_ *model.OrderResponse, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start checkout: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback checkout transaction")
			}
		}
	}()

	// Step 1: snapshot the cart under row-level lock. A concurrent checkout
	// for the same user blocks here and then sees an empty cart.
	lines, err := s.cartRepo.SnapshotForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(lines) == 0 {
		err = model.ErrEmptyCart
		return nil, err
	}

	lineItems := make([]pricing.LineItem, len(lines))
	for i, line := range lines {
		lineItems[i] = pricing.LineItem{UnitPrice: line.UnitPrice, Quantity: line.Quantity}
	}

	// Step 2: subtotal before any discount; promo eligibility is judged
	// against it.
	subtotal := pricing.Price(lineItems, req.ShippingCost, nil).Subtotal

	// Step 3: resolve the promo code. Any failure aborts the whole checkout
	// with one generic error; the preview endpoint is where failures are
	// distinguished.
	var discount *pricing.Discount
	var promoCode *string
	if req.PromoCode != nil && *req.PromoCode != "" {
		var belowMin *promo.BelowMinimumError
		d, evalErr := s.promos.Evaluate(ctx, *req.PromoCode, subtotal)
		switch {
		case evalErr == nil:
			discount = &d
			promoCode = req.PromoCode
		case errors.Is(evalErr, promo.ErrInvalidOrExpired), errors.As(evalErr, &belowMin):
			s.logger.Warn().
				Str("promo_code", *req.PromoCode).
				Err(evalErr).
				Msg("promo code rejected at checkout")
			err = model.ErrInvalidPromoCode
			return nil, err
		default:
			err = fmt.Errorf("failed to evaluate promo code: %w", evalErr)
			return nil, err
		}
	}

	// Step 4: final quote with the resolved discount and the caller-supplied
	// shipping cost.
	quote := pricing.Price(lineItems, req.ShippingCost, discount)

	// Step 5: materialize the order with frozen unit prices.
	orderNumber, err := GenerateOrderNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     orderNumber,
		UserID:          userID,
		Status:          model.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		ShippingCost:    req.ShippingCost,
		Subtotal:        quote.Subtotal,
		PromoCode:       promoCode,
		PromoDiscount:   quote.Discount,
		Total:           quote.Total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, len(lines))
	cartIDs := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		}
		cartIDs[i] = line.CartItemID
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, err
	}

	// Step 6: clear exactly the snapshotted cart rows; commits together with
	// the order or not at all.
	if err = s.cartRepo.DeleteByIDs(ctx, tx, cartIDs); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("user_id", userID.String()).
		Int("item_count", len(items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("checkout completed")

	return &model.OrderResponse{Order: order, Items: items}, nil
}

// afterCommit runs the best-effort post-commit effects: idempotency
// recording, event publishing, metrics. None of them can fail the checkout.
func (s *checkoutService) afterCommit(ctx context.Context, userID uuid.UUID, idempotencyKey string, resp *model.OrderResponse) {
	metrics.OrdersCreatedTotal.Inc()

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Put(ctx, userID, idempotencyKey, resp.Order.OrderNumber); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record idempotency key")
		}
	}

	promoCode := ""
	if resp.Order.PromoCode != nil {
		promoCode = *resp.Order.PromoCode
	}
	event := events.OrderCreated{
		OrderNumber:   resp.Order.OrderNumber,
		UserID:        userID.String(),
		Subtotal:      resp.Order.Subtotal.StringFixed(2),
		PromoCode:     promoCode,
		PromoDiscount: resp.Order.PromoDiscount.StringFixed(2),
		Total:         resp.Order.Total.StringFixed(2),
		ItemCount:     len(resp.Items),
		CreatedAt:     resp.Order.CreatedAt,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_number", resp.Order.OrderNumber).
			Msg("failed to publish order created event")
	}
}

// GetByNumber retrieves one of the caller's orders with its items.
func (s *checkoutService) GetByNumber(ctx context.Context, userID uuid.UUID, orderNumber string) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByNumber(ctx, userID, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, nil
	}
	return &model.OrderResponse{Order: order, Items: items}, nil
}

// validateCheckoutRequest rejects malformed requests before any database
// work starts.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "request body is required")
	}
	if req.ShippingAddress == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "shipping_address is required")
	}
	if req.ShippingCost.IsNegative() {
		return model.NewDomainError(model.ErrCodeValidation, "shipping_cost must not be negative")
	}
	return nil
}
