// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go provides a Valkey-backed cache for public API responses.
// Handlers store the encoded JSON body under a route-derived key so
// repeat reads skip the database entirely. Admin mutations clear the
// whole namespace rather than chasing which listings a change touches.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached responses.
	responseKeyPrefix = "resp:"

	// PostTTL covers post pages and listings.
	PostTTL = 5 * time.Minute

	// GraphTTL covers the idea graph, which only changes on publish.
	GraphTTL = time.Hour

	// SearchTTL covers search results.
	SearchTTL = 10 * time.Minute
)

// ResponseCache caches encoded API responses in Valkey. A nil client
// disables it: every Get is a miss and Set is a no-op.
type ResponseCache struct {
	client *redis.Client
}

// NewResponseCache creates a response cache backed by the given Valkey
// client, which may be nil.
func NewResponseCache(client *redis.Client) *ResponseCache {
	return &ResponseCache{client: client}
}

// Get retrieves a cached response body. Returns false on miss or error;
// a flaky cache degrades to uncached reads, never to failures.
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if rc.client == nil {
		return nil, false
	}
	val, err := rc.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("response cache hit", "key", key)
	return val, true
}

// Set stores a response body under a key with the given TTL.
func (rc *ResponseCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if rc.client == nil {
		return
	}
	if err := rc.client.Set(ctx, responseKeyPrefix+key, body, ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached response by scanning the prefix.
// Called after any admin mutation: a published post can surface in post
// pages, listings, the graph, threads, and search at once.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) {
	if rc.client == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, responseKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("response cache cleared", "deleted", deleted)
	}
}
