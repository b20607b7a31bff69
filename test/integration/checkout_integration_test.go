package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"thriftmart/internal/events"
	"thriftmart/internal/model"
	"thriftmart/internal/promo"
	"thriftmart/internal/repository"
	"thriftmart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newCheckoutService(db *TestDB) service.CheckoutService {
	logger := zerolog.Nop()
	cartRepo := repository.NewCartRepository(logger)
	promoRepo := repository.NewPromoCodeRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	evaluator := promo.NewEvaluator(promoRepo, logger)
	return service.NewCheckoutService(cartRepo, orderRepo, evaluator, nil, events.NopPublisher{}, 3, logger)
}

func TestCheckoutFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()

	t.Run("checkout without promo", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		userID := uuid.New()

		SeedProduct(t, db.Pool, "P001", "Sourdough Loaf", "10.00")
		SeedProduct(t, db.Pool, "P002", "Greek Yogurt", "5.00")
		SeedCartItem(t, db.Pool, userID, "P001", 2)
		SeedCartItem(t, db.Pool, userID, "P002", 1)

		svc := newCheckoutService(db)

		resp, err := svc.Checkout(ctx, userID, &model.CheckoutRequest{
			ShippingAddress: "1 Test Lane",
			ShippingCost:    dec(t, "3.00"),
		}, "")

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Regexp(t, `^ORD-[A-Z0-9]{8}$`, resp.Order.OrderNumber)
		assert.Equal(t, model.OrderStatusPending, resp.Order.Status)
		assert.Equal(t, "25.00", resp.Order.Subtotal.StringFixed(2))
		assert.Equal(t, "28.00", resp.Order.Total.StringFixed(2))
		require.Len(t, resp.Items, 2)

		// The cart is cleared in the same transaction.
		assert.Equal(t, 0, CountRows(t, db.Pool, "cart_items"))
		assert.Equal(t, 1, CountRows(t, db.Pool, "orders"))
		assert.Equal(t, 2, CountRows(t, db.Pool, "order_items"))

		// The order is readable back by its number, scoped to its owner.
		fetched, err := svc.GetByNumber(ctx, userID, resp.Order.OrderNumber)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "28.00", fetched.Order.Total.StringFixed(2))
		assert.Len(t, fetched.Items, 2)

		// Another user cannot see it.
		other, err := svc.GetByNumber(ctx, uuid.New(), resp.Order.OrderNumber)
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("checkout with percentage promo", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		userID := uuid.New()
		now := time.Now()

		SeedProduct(t, db.Pool, "P001", "Sourdough Loaf", "10.00")
		SeedProduct(t, db.Pool, "P002", "Greek Yogurt", "5.00")
		SeedCartItem(t, db.Pool, userID, "P001", 2)
		SeedCartItem(t, db.Pool, userID, "P002", 1)
		SeedPromoCode(t, db.Pool, model.PromoCode{
			Code:               "SAVE10",
			DiscountPercentage: 10,
			ValidFrom:          now.Add(-24 * time.Hour),
			ValidTo:            now.Add(24 * time.Hour),
			IsActive:           true,
			MinimumOrderValue:  dec(t, "20.00"),
		})

		svc := newCheckoutService(db)

		promoCode := "SAVE10"
		resp, err := svc.Checkout(ctx, userID, &model.CheckoutRequest{
			ShippingAddress: "1 Test Lane",
			ShippingCost:    dec(t, "3.00"),
			PromoCode:       &promoCode,
		}, "")

		require.NoError(t, err)
		assert.Equal(t, "25.00", resp.Order.Subtotal.StringFixed(2))
		assert.Equal(t, "2.50", resp.Order.PromoDiscount.StringFixed(2))
		assert.Equal(t, "25.50", resp.Order.Total.StringFixed(2))
		require.NotNil(t, resp.Order.PromoCode)
		assert.Equal(t, "SAVE10", *resp.Order.PromoCode)
	})

	t.Run("below minimum promo aborts checkout", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		userID := uuid.New()
		now := time.Now()

		SeedProduct(t, db.Pool, "P002", "Greek Yogurt", "5.00")
		SeedCartItem(t, db.Pool, userID, "P002", 1)
		SeedPromoCode(t, db.Pool, model.PromoCode{
			Code:               "BIGSPEND",
			DiscountPercentage: 10,
			ValidFrom:          now.Add(-24 * time.Hour),
			ValidTo:            now.Add(24 * time.Hour),
			IsActive:           true,
			MinimumOrderValue:  dec(t, "50.00"),
		})

		svc := newCheckoutService(db)

		promoCode := "BIGSPEND"
		resp, err := svc.Checkout(ctx, userID, &model.CheckoutRequest{
			ShippingAddress: "1 Test Lane",
			ShippingCost:    dec(t, "3.00"),
			PromoCode:       &promoCode,
		}, "")

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, model.ErrInvalidPromoCode)

		// The abort leaves the cart untouched and creates nothing.
		assert.Equal(t, 1, CountRows(t, db.Pool, "cart_items"))
		assert.Equal(t, 0, CountRows(t, db.Pool, "orders"))
	})

	t.Run("unknown promo code aborts checkout", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		userID := uuid.New()

		SeedProduct(t, db.Pool, "P002", "Greek Yogurt", "5.00")
		SeedCartItem(t, db.Pool, userID, "P002", 1)

		svc := newCheckoutService(db)

		promoCode := "NOSUCHCODE"
		resp, err := svc.Checkout(ctx, userID, &model.CheckoutRequest{
			ShippingAddress: "1 Test Lane",
			ShippingCost:    dec(t, "3.00"),
			PromoCode:       &promoCode,
		}, "")

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, model.ErrInvalidPromoCode)
		assert.Equal(t, 1, CountRows(t, db.Pool, "cart_items"))
	})

	t.Run("empty cart", func(t *testing.T) {
		CleanupDB(t, db.Pool)

		svc := newCheckoutService(db)

		resp, err := svc.Checkout(ctx, uuid.New(), &model.CheckoutRequest{
			ShippingAddress: "1 Test Lane",
			ShippingCost:    dec(t, "3.00"),
		}, "")

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, model.ErrEmptyCart)
	})

	t.Run("concurrent checkouts for the same user serialize", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		userID := uuid.New()

		SeedProduct(t, db.Pool, "P001", "Sourdough Loaf", "10.00")
		SeedProduct(t, db.Pool, "P002", "Greek Yogurt", "5.00")
		SeedCartItem(t, db.Pool, userID, "P001", 2)
		SeedCartItem(t, db.Pool, userID, "P002", 1)

		svc := newCheckoutService(db)
		req := &model.CheckoutRequest{
			ShippingAddress: "1 Test Lane",
			ShippingCost:    dec(t, "3.00"),
		}

		// Both calls race on the cart's row lock; the loser blocks until the
		// winner commits and then sees an empty cart.
		start := make(chan struct{})
		results := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := svc.Checkout(ctx, userID, req, "")
				results <- err
			}()
		}
		close(start)
		wg.Wait()
		close(results)

		var succeeded, emptyCart int
		for err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, model.ErrEmptyCart):
				emptyCart++
			default:
				t.Fatalf("unexpected checkout error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded, "exactly one checkout must win")
		assert.Equal(t, 1, emptyCart, "the loser must see an empty cart")

		// No cart row was spent into two orders.
		assert.Equal(t, 1, CountRows(t, db.Pool, "orders"))
		assert.Equal(t, 2, CountRows(t, db.Pool, "order_items"))
		assert.Equal(t, 0, CountRows(t, db.Pool, "cart_items"))
	})

	t.Run("order prices frozen against catalogue changes", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		userID := uuid.New()

		SeedProduct(t, db.Pool, "P001", "Sourdough Loaf", "10.00")
		SeedCartItem(t, db.Pool, userID, "P001", 1)

		svc := newCheckoutService(db)

		resp, err := svc.Checkout(ctx, userID, &model.CheckoutRequest{
			ShippingAddress: "1 Test Lane",
			ShippingCost:    dec(t, "0.00"),
		}, "")
		require.NoError(t, err)

		// The catalogue price moves after checkout.
		_, err = db.Pool.Exec(ctx, "UPDATE products SET price = 99.99 WHERE id = 'P001'")
		require.NoError(t, err)

		fetched, err := svc.GetByNumber(ctx, userID, resp.Order.OrderNumber)
		require.NoError(t, err)
		require.Len(t, fetched.Items, 1)
		assert.Equal(t, "10.00", fetched.Items[0].Price.StringFixed(2))
		assert.Equal(t, "10.00", fetched.Order.Total.StringFixed(2))
	})
}

func TestPromoCodeRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()
	logger := zerolog.Nop()
	now := time.Now()

	SeedPromoCode(t, db.Pool, model.PromoCode{
		Code:              "FIVEOFF",
		DiscountAmount:    dec(t, "5.00"),
		ValidFrom:         now.Add(-24 * time.Hour),
		ValidTo:           now.Add(24 * time.Hour),
		IsActive:          true,
		MinimumOrderValue: dec(t, "0"),
	})

	repo := repository.NewPromoCodeRepository(db.Pool, logger)

	found, err := repo.FindByCode(ctx, "FIVEOFF")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "FIVEOFF", found.Code)
	assert.Equal(t, "5.00", found.DiscountAmount.StringFixed(2))
	assert.True(t, found.IsActive)

	missing, err := repo.FindByCode(ctx, "NOSUCHCODE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
