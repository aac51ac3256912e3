// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for catalog API responses.
// Unfiltered product listings and the category list are served from the
// cache so repeated reads skip the round trip to the remote catalog
// service; any write command invalidates the whole namespace, since a
// single create or delete can affect every cached listing.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for cached responses.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL is how long a cached response stays valid.
	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache manages cached catalog responses in Valkey.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a catalog response cache backed by the given
// Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get retrieves a cached response body. Returns false on miss.
func (cc *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := cc.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("catalog cache hit", "key", key)
	return val, true
}

// Set stores a response body for a key with the configured TTL.
func (cc *CatalogCache) Set(ctx context.Context, key string, body []byte) {
	if err := cc.client.Set(ctx, catalogKeyPrefix+key, body, cc.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached catalog response by scanning for the
// prefix. Used after any write command, since creates and deletes affect
// listings and the derived category set alike.
func (cc *CatalogCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, catalogKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("catalog cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("catalog cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("catalog cache cleared", "deleted", deleted)
	}
}

// ProductsKey returns the cache key for the unfiltered product listing.
func ProductsKey() string {
	return "products"
}

// CategoriesKey returns the cache key for the category list.
func CategoriesKey() string {
	return "categories"
}

// CategoryListingKey returns the cache key for one category's listing.
func CategoryListingKey(category string) string {
	return "products:category:" + category
}
