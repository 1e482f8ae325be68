// Package searchcache implements the TTL cache for search results over the
// search_cache table. The cache is a pure optimization: every failure path
// degrades to a miss and the caller's request proceeds.
package searchcache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/regpulse-io/regpulse/internal/metrics"
	"github.com/regpulse-io/regpulse/internal/store"
	"github.com/regpulse-io/regpulse/pkg/types"
)

// Cache limits. Key length matches the cache_key column width.
const (
	DefaultTTL         = 30 * time.Minute
	DefaultMaxKeyLen   = 255
	DefaultMaxQueryLen = 500
)

// Cache wraps the store's search_cache rows with key derivation and expiry.
type Cache struct {
	store       store.Store
	ttl         time.Duration
	maxKeyLen   int
	maxQueryLen int
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLimits overrides the key and stored-query length caps. They must match
// the column widths of the deployment's search_cache table.
func WithLimits(maxKeyLen, maxQueryLen int) Option {
	return func(c *Cache) {
		if maxKeyLen > 0 {
			c.maxKeyLen = maxKeyLen
		}
		if maxQueryLen > 0 {
			c.maxQueryLen = maxQueryLen
		}
	}
}

// WithClock sets the time source (useful for testing expiry).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a search result cache over the given store.
func New(st store.Store, opts ...Option) *Cache {
	c := &Cache{
		store:       st,
		ttl:         DefaultTTL,
		maxKeyLen:   DefaultMaxKeyLen,
		maxQueryLen: DefaultMaxQueryLen,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key derives the deterministic cache key for a query and filter set using
// the default length cap. The query is lowercased and trimmed; filters are
// serialized with lexicographically sorted keys (encoding/json sorts map
// keys), so structurally equal filters always collide.
func Key(query string, filters map[string]interface{}) string {
	return deriveKey(query, filters, DefaultMaxKeyLen)
}

func deriveKey(query string, filters map[string]interface{}, maxLen int) string {
	norm := strings.ToLower(strings.TrimSpace(query))

	encoded := ""
	if len(filters) > 0 {
		if data, err := json.Marshal(filters); err == nil {
			encoded = base64.RawURLEncoding.EncodeToString(data)
		}
	}

	return truncate(norm+":"+encoded, maxLen)
}

// truncate caps s at n bytes without splitting a rune; the stored columns
// reject invalid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (c *Cache) key(query string, filters map[string]interface{}) string {
	return deriveKey(query, filters, c.maxKeyLen)
}

// Get returns the cached result for (query, filters), or (nil, false) on a
// miss. Entries found past their expiry are deleted before reporting a miss.
func (c *Cache) Get(ctx context.Context, query string, filters map[string]interface{}) (json.RawMessage, bool) {
	key := c.key(query, filters)
	entry, err := c.store.GetCacheEntry(ctx, key)
	if err != nil {
		c.logger.Warn("searchcache: lookup failed", "error", err)
		metrics.CacheMisses.Add(1)
		return nil, false
	}
	if entry == nil {
		metrics.CacheMisses.Add(1)
		return nil, false
	}
	if !entry.ExpiresAt.After(c.now()) {
		if err := c.store.DeleteCacheEntry(ctx, key); err != nil {
			c.logger.Warn("searchcache: expiry delete failed", "error", err)
		}
		metrics.CacheMisses.Add(1)
		metrics.CacheEvictions.Add(1)
		return nil, false
	}
	metrics.CacheHits.Add(1)
	return entry.ResultData, true
}

// Put stores a search result for (query, filters) with expiry now + TTL.
// The stored query text is truncated to the column width.
func (c *Cache) Put(ctx context.Context, query string, filters map[string]interface{}, result json.RawMessage) {
	entry := types.CacheEntry{
		CacheKey:   c.key(query, filters),
		Query:      truncate(query, c.maxQueryLen),
		ResultData: result,
		ExpiresAt:  c.now().Add(c.ttl),
	}
	if err := c.store.PutCacheEntry(ctx, entry); err != nil {
		c.logger.Warn("searchcache: put failed", "error", err)
	}
}

// Sweep bulk-deletes expired rows, returning the count removed. Intended to
// run periodically out-of-band.
func (c *Cache) Sweep(ctx context.Context) int {
	n, err := c.store.SweepCache(ctx, c.now())
	if err != nil {
		c.logger.Warn("searchcache: sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		metrics.CacheEvictions.Add(int64(n))
	}
	return n
}
