// Package cache keeps the computed dashboard in Redis between mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const dashboardKey = "stockledger:dashboard"

// NewRedisClient returns nil when addr is empty; callers treat a nil client as "no cache".
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// DashboardCache stores one JSON document. With a nil client every call is a no-op miss.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DashboardCache{client: client, ttl: ttl}
}

func (c *DashboardCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the cached dashboard into dst and reports whether it was found.
func (c *DashboardCache) Get(ctx context.Context, dst any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, dashboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *DashboardCache) Set(ctx context.Context, v any) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dashboardKey, raw, c.ttl).Err()
}

// Invalidate drops the cached dashboard; the next Get misses.
func (c *DashboardCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, dashboardKey).Err()
}

func (c *DashboardCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
