package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// WalletCache implements ports.WalletCache using Redis.
// A zero TTL disables reads and writes; invalidation always runs.
type WalletCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewWalletCache creates a Redis-backed wallet snapshot cache.
func NewWalletCache(client *goredis.Client, ttl time.Duration) *WalletCache {
	return &WalletCache{
		client: client,
		prefix: "wallet:",
		ttl:    ttl,
	}
}

func (c *WalletCache) key(id uuid.UUID) string {
	return c.prefix + id.String()
}

// Get returns the cached wallet, or nil, nil on a miss.
func (c *WalletCache) Get(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	if c.ttl <= 0 {
		return nil, nil
	}

	val, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis wallet get: %w", err)
	}

	var w domain.Wallet
	if err := json.Unmarshal(val, &w); err != nil {
		return nil, fmt.Errorf("decode cached wallet: %w", err)
	}
	return &w, nil
}

// Set stores a committed wallet snapshot, replacing any cached one.
func (c *WalletCache) Set(ctx context.Context, w *domain.Wallet) error {
	if c.ttl <= 0 {
		return nil
	}

	val, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wallet: %w", err)
	}
	if err := c.client.Set(ctx, c.key(w.ID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis wallet set: %w", err)
	}
	return nil
}

// Fill stores a snapshot read from the database only if no entry exists (SET NX).
func (c *WalletCache) Fill(ctx context.Context, w *domain.Wallet) error {
	if c.ttl <= 0 {
		return nil
	}

	val, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wallet: %w", err)
	}
	if err := c.client.SetNX(ctx, c.key(w.ID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis wallet fill: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot of a wallet.
func (c *WalletCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("redis wallet del: %w", err)
	}
	return nil
}
