// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumenmarket/lumen/internal/platform/constants"
)

// CacheTTL bounds catalog staleness. Merchandising writes go straight to
// PostgreSQL, so a cached entry can lag reality by at most this long.
const CacheTTL = 5 * time.Minute

// RedisCache implements [Cache] on go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates the Redis implementation of [Cache].
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// cachedList is the stored shape for list pages; the total rides along so a
// hit can rebuild pagination metadata without a COUNT query.
type cachedList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// GetProduct returns the cached product for key, or (nil, nil) on a miss.
func (c *RedisCache) GetProduct(ctx context.Context, key string) (*Product, error) {
	payload, err := c.client.Get(ctx, constants.RedisPrefixProduct+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("product_cache_get_failed: %w", err)
	}

	p := &Product{}
	if err := json.Unmarshal(payload, p); err != nil {
		return nil, fmt.Errorf("product_cache_decode_failed: %w", err)
	}

	return p, nil
}

// SetProduct caches a product under key for [CacheTTL].
func (c *RedisCache) SetProduct(ctx context.Context, key string, product *Product) error {
	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("product_cache_encode_failed: %w", err)
	}

	if err := c.client.Set(ctx, constants.RedisPrefixProduct+key, payload, CacheTTL).Err(); err != nil {
		return fmt.Errorf("product_cache_set_failed: %w", err)
	}

	return nil
}

// GetList returns the cached page for key. The bool reports whether the key
// was present; an empty page is a valid cached value.
func (c *RedisCache) GetList(ctx context.Context, key string) ([]Product, int, bool, error) {
	payload, err := c.client.Get(ctx, constants.RedisPrefixProductList+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, false, nil
		}
		return nil, 0, false, fmt.Errorf("product_cache_get_list_failed: %w", err)
	}

	var entry cachedList
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, 0, false, fmt.Errorf("product_cache_decode_list_failed: %w", err)
	}

	return entry.Products, entry.Total, true, nil
}

// SetList caches a page and its total under key for [CacheTTL].
func (c *RedisCache) SetList(ctx context.Context, key string, products []Product, total int) error {
	payload, err := json.Marshal(cachedList{Products: products, Total: total})
	if err != nil {
		return fmt.Errorf("product_cache_encode_list_failed: %w", err)
	}

	if err := c.client.Set(ctx, constants.RedisPrefixProductList+key, payload, CacheTTL).Err(); err != nil {
		return fmt.Errorf("product_cache_set_list_failed: %w", err)
	}

	return nil
}
