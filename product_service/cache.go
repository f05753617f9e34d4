package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type ProductCache interface {
	Get(ctx context.Context, id string) (*Product, bool)
	Set(ctx context.Context, product *Product)
	Invalidate(ctx context.Context, id string)
	Close() error
}

// RedisProductCache is a cache-aside store for single products. Failures are
// logged and treated as misses.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

func productCacheKey(id string) string {
	return "product:" + id
}

func (c *RedisProductCache) Get(ctx context.Context, id string) (*Product, bool) {
	raw, err := c.client.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Error reading product from cache", "product-id", id, "err", err)
		}
		return nil, false
	}

	var product Product
	if err := json.Unmarshal(raw, &product); err != nil {
		slog.Warn("Error unmarshalling cached product", "product-id", id, "err", err)
		return nil, false
	}
	return &product, true
}

func (c *RedisProductCache) Set(ctx context.Context, product *Product) {
	raw, err := json.Marshal(product)
	if err != nil {
		slog.Warn("Error marshalling product for cache", "product-id", product.ID.Hex(), "err", err)
		return
	}
	if err := c.client.Set(ctx, productCacheKey(product.ID.Hex()), raw, c.ttl).Err(); err != nil {
		slog.Warn("Error writing product to cache", "product-id", product.ID.Hex(), "err", err)
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, productCacheKey(id)).Err(); err != nil {
		slog.Warn("Error invalidating cached product", "product-id", id, "err", err)
	}
}

func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

type noopProductCache struct{}

func (noopProductCache) Get(context.Context, string) (*Product, bool) { return nil, false }
func (noopProductCache) Set(context.Context, *Product)                {}
func (noopProductCache) Invalidate(context.Context, string)           {}
func (noopProductCache) Close() error                                 { return nil }
