// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache for rendered public responses.
// A cached entry carries the response body and the ids of the ads it shows,
// so impressions can still be counted when the body is served from cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// Entry is one cached response.
type Entry struct {
	ContentType string  `json:"content_type"`
	Body        []byte  `json:"body"`
	AdIDs       []int64 `json:"ad_ids,omitempty"`
}

// Observer receives cache events. Implemented by the metrics collector.
type Observer interface {
	RecordCacheResult(hit bool)
	RecordInvalidation()
}

// PageCache manages response caching in Valkey.
type PageCache struct {
	client   *redis.Client
	ttl      time.Duration
	observer Observer
}

// NewPageCache creates a new page cache backed by the given Valkey client.
// obs may be nil.
func NewPageCache(client *redis.Client, ttl time.Duration, obs Observer) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl, observer: obs}
}

// Get retrieves a cached entry. The second result is false on a miss or
// when Valkey fails; cache errors never fail a request.
func (pc *PageCache) Get(ctx context.Context, key string) (*Entry, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		pc.record(false)
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		pc.record(false)
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		slog.Warn("page cache decode error", "key", key, "error", err)
		pc.record(false)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	pc.record(true)
	return &e, true
}

// Set stores an entry with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, e *Entry) {
	pc.set(ctx, key, e, pc.ttl)
}

// SetUntil stores an entry that must not outlive until, such as a page
// showing an ad that stops running then. A zero until means the
// configured TTL; an until already past stores nothing.
func (pc *PageCache) SetUntil(ctx context.Context, key string, e *Entry, until time.Time) {
	ttl, ok := pc.ttlUntil(until, time.Now())
	if !ok {
		return
	}
	pc.set(ctx, key, e, ttl)
}

func (pc *PageCache) ttlUntil(until, now time.Time) (time.Duration, bool) {
	if until.IsZero() {
		return pc.ttl, true
	}
	left := until.Sub(now)
	if left <= 0 {
		return 0, false
	}
	return min(pc.ttl, left), true
}

func (pc *PageCache) set(ctx context.Context, key string, e *Entry, ttl time.Duration) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Warn("page cache encode error", "key", key, "error", err)
		return
	}
	if err := pc.client.Set(ctx, pageKeyPrefix+key, data, ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidatePage removes a single page from the cache.
func (pc *PageCache) InvalidatePage(ctx context.Context, key string) {
	if err := pc.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		slog.Warn("page cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("page cache invalidated", "key", key)
}

// InvalidateHomepage removes the cached homepage.
func (pc *PageCache) InvalidateHomepage(ctx context.Context) {
	pc.InvalidatePage(ctx, HomepageKey())
}

// InvalidateAll removes all cached pages by scanning for the prefix.
// Every admin write calls it: menus, ads and categories appear on every page.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if pc.observer != nil {
		pc.observer.RecordInvalidation()
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

func (pc *PageCache) record(hit bool) {
	if pc.observer != nil {
		pc.observer.RecordCacheResult(hit)
	}
}

// HomepageKey returns the cache key for the homepage.
func HomepageKey() string {
	return "_homepage"
}

// RequestKey returns the cache key for a request URL: the escaped path plus
// the query with its parameters sorted, so ?a=1&b=2 and ?b=2&a=1 share
// an entry.
func RequestKey(u *url.URL) string {
	if u.EscapedPath() == "/" && u.RawQuery == "" {
		return HomepageKey()
	}
	key := u.EscapedPath()
	if q := u.Query().Encode(); q != "" {
		key += "?" + q
	}
	return key
}
