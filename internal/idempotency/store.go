// Package idempotency maps client-supplied Idempotency-Key values to the
// order numbers they produced, so a retried checkout request returns the
// already-created order instead of materializing a duplicate.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Store records completed checkouts by idempotency key.
type Store interface {
	// Get returns the order number recorded for the key, or "" when the key
	// has not been seen.
	Get(ctx context.Context, userID uuid.UUID, key string) (string, error)

	// Put records the key -> order number mapping. An existing mapping is
	// never overwritten.
	Put(ctx context.Context, userID uuid.UUID, key, orderNumber string) error

	// Close releases the underlying connection.
	Close() error
}

// RedisStore implements Store on Redis with a per-entry TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func storeKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("checkout:idem:%s:%s", userID, key)
}

// Get returns the recorded order number for the key, or "" when absent.
func (s *RedisStore) Get(ctx context.Context, userID uuid.UUID, key string) (string, error) {
	val, err := s.rdb.Get(ctx, storeKey(userID, key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("idempotency get failed: %w", err)
	}
	return val, nil
}

// Put records the mapping. SetNX keeps the first recorded order number if two
// requests race on the same key.
func (s *RedisStore) Put(ctx context.Context, userID uuid.UUID, key, orderNumber string) error {
	if err := s.rdb.SetNX(ctx, storeKey(userID, key), orderNumber, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency put failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
