package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// pendingMarker is stored under a reserved key until the result is written.
var pendingMarker = []byte("__pending__")

// IdempotencyCache implements ports.IdempotencyCache using Redis.
type IdempotencyCache struct {
	client *goredis.Client
	prefix string
}

// NewIdempotencyCache creates a new Redis-backed idempotency cache.
func NewIdempotencyCache(client *goredis.Client) *IdempotencyCache {
	return &IdempotencyCache{
		client: client,
		prefix: "idempotency:transact:",
	}
}

// Get retrieves a stored mutation result by idempotency key.
// Returns nil, nil if the key does not exist and ports.ErrIdempotencyInProgress
// while the key is reserved.
func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis idempotency get: %w", err)
	}
	if bytes.Equal(val, pendingMarker) {
		return nil, ports.ErrIdempotencyInProgress
	}
	return val, nil
}

// Reserve claims key with SET NX. It reports false when the key already exists.
func (c *IdempotencyCache) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.prefix+key, pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis idempotency reserve: %w", err)
	}
	return ok, nil
}

// Set stores the final result for key, replacing a reservation.
func (c *IdempotencyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

// Release drops a reservation so the client may retry with the same key.
func (c *IdempotencyCache) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis idempotency release: %w", err)
	}
	return nil
}
