// Package cache is a thin JSON layer over Redis for read-mostly views.
// All methods are safe on a nil *Cache, so callers can run without Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyOrderView     = "order:view:%s"
	keyActiveCatalog = "catalog:active"
)

var (
	TTLOrderView = 5 * time.Minute
	TTLCatalog   = time.Minute
)

type Cache struct {
	rdb *redis.Client
}

// New returns nil when no address is configured; callers treat a nil cache
// as a permanent miss.
func New(addr string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) getJSON(ctx context.Context, key string, out any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *Cache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	// Cache writes are best effort; the database stays the source of truth.
	_ = c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *Cache) GetOrderView(ctx context.Context, orderID string, out any) bool {
	return c.getJSON(ctx, fmt.Sprintf(keyOrderView, orderID), out)
}

func (c *Cache) SetOrderView(ctx context.Context, orderID string, v any) {
	c.setJSON(ctx, fmt.Sprintf(keyOrderView, orderID), v, TTLOrderView)
}

func (c *Cache) GetActiveCatalog(ctx context.Context, out any) bool {
	return c.getJSON(ctx, keyActiveCatalog, out)
}

func (c *Cache) SetActiveCatalog(ctx context.Context, v any) {
	c.setJSON(ctx, keyActiveCatalog, v, TTLCatalog)
}

func (c *Cache) InvalidateActiveCatalog(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.rdb.Del(ctx, keyActiveCatalog).Err()
}
