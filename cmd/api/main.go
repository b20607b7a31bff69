package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thriftmart/internal/config"
	"thriftmart/internal/database"
	"thriftmart/internal/events"
	"thriftmart/internal/handler"
	"thriftmart/internal/idempotency"
	"thriftmart/internal/promo"
	"thriftmart/internal/repository"
	"thriftmart/internal/router"
	"thriftmart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting thriftmart checkout service")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool and schema
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.ApplySchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	// Initialize repositories
	cartRepo := repository.NewCartRepository(logger)
	promoRepo := repository.NewPromoCodeRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Promo rule evaluator shared by checkout and the preview endpoint
	evaluator := promo.NewEvaluator(promoRepo, logger)

	// Optional idempotency store
	var idemStore idempotency.Store
	if cfg.Redis.Enabled {
		store, err := idempotency.NewRedisStore(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.IdempotencyTTL,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize idempotency store: %w", err)
		}
		defer store.Close()
		idemStore = store
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency store enabled")
	} else {
		logger.Info().Msg("idempotency store disabled (REDIS_ENABLED=false)")
	}

	// Optional order event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("order event publishing enabled")
	}

	// Initialize services
	checkoutService := service.NewCheckoutService(
		cartRepo,
		orderRepo,
		evaluator,
		idemStore,
		publisher,
		cfg.Checkout.OrderNumberRetries,
		logger,
	)
	promoService := service.NewPromoService(evaluator, logger)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(checkoutService, logger)
	promoHandler := handler.NewPromoHandler(promoService, logger)

	// Initialize router
	mux := router.New(orderHandler, promoHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
