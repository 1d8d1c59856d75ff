// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// search.go caches encoded search responses in Valkey. Keys embed the
// snapshot version, so a fixture reload never serves stale results even
// before InvalidateAll runs.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// searchKeyPrefix is the Valkey key prefix for cached search responses.
	searchKeyPrefix = "lifecat:search:"

	// DefaultSearchTTL is how long a search response stays cached.
	DefaultSearchTTL = 10 * time.Minute
)

// SearchCache stores search responses in Valkey. A nil *SearchCache is
// valid and behaves as an always-empty cache.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchCache creates a search cache backed by the given Valkey client.
func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	if ttl == 0 {
		ttl = DefaultSearchTTL
	}
	return &SearchCache{client: client, ttl: ttl}
}

// SearchKey returns the cache key for a normalized term in a snapshot version.
func SearchKey(version, term string) string {
	return version + ":" + term
}

// Get returns the cached response body for key.
func (sc *SearchCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if sc == nil {
		return nil, false
	}
	val, err := sc.client.Get(ctx, searchKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("search cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("search cache hit", "key", key)
	return val, true
}

// Set stores a response body under key with the configured TTL.
func (sc *SearchCache) Set(ctx context.Context, key string, body []byte) {
	if sc == nil {
		return
	}
	if err := sc.client.Set(ctx, searchKeyPrefix+key, body, sc.ttl).Err(); err != nil {
		slog.Warn("search cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached search response by scanning for the
// prefix. Returns the number of keys deleted.
func (sc *SearchCache) InvalidateAll(ctx context.Context) int {
	if sc == nil {
		return 0
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := sc.client.Scan(ctx, cursor, searchKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("search cache scan error", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := sc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("search cache bulk delete error", "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("search cache cleared", "deleted", deleted)
	}
	return deleted
}
