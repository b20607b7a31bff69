package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"thriftmart/internal/database"
	"thriftmart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	// Same decimal <-> NUMERIC mapping the production pool uses.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.ApplySchema(ctx, pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProduct inserts a product with the given unit price.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, id, name, price string) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, name, price, original_price, category, retailer)
		 VALUES ($1, $2, $3, $3, 'Test', 'Test Retailer')`,
		id, name, price,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", id, err)
	}
}

// SeedCartItem inserts a cart row for the user and returns its ID.
func SeedCartItem(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, productID string, quantity int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO cart_items (id, user_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
		id, userID, productID, quantity,
	)
	if err != nil {
		t.Fatalf("failed to seed cart item for %s: %v", productID, err)
	}
	return id
}

// SeedPromoCode inserts a promo code record.
func SeedPromoCode(t *testing.T, pool *pgxpool.Pool, promo model.PromoCode) {
	t.Helper()

	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO promo_codes (id, code, discount_amount, discount_percentage,
		                          valid_from, valid_to, is_active, minimum_order_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		promo.ID, promo.Code, promo.DiscountAmount, promo.DiscountPercentage,
		promo.ValidFrom, promo.ValidTo, promo.IsActive, promo.MinimumOrderValue,
	)
	if err != nil {
		t.Fatalf("failed to seed promo code %s: %v", promo.Code, err)
	}
}

// CountRows returns the number of rows in the given table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	return count
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "cart_items", "promo_codes", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
