package searchcache

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regpulse-io/regpulse/internal/testutil"
)

func TestKey_Deterministic(t *testing.T) {
	a := map[string]interface{}{"source": "FDA", "status": "active", "jurisdiction": "US"}
	b := map[string]interface{}{"jurisdiction": "US", "status": "active", "source": "FDA"}

	assert.Equal(t, Key("Recalls", a), Key("Recalls", b))
}

func TestKey_NormalizesQuery(t *testing.T) {
	filters := map[string]interface{}{"source": "EPA"}

	assert.Equal(t, Key("recalls", filters), Key("  Recalls  ", filters))
}

func TestKey_DistinguishesFilters(t *testing.T) {
	assert.NotEqual(t,
		Key("recalls", map[string]interface{}{"source": "FDA"}),
		Key("recalls", map[string]interface{}{"source": "EPA"}),
	)
}

func TestKey_NestedFilters(t *testing.T) {
	a := map[string]interface{}{"range": map[string]interface{}{"from": "2026-01-01", "to": "2026-02-01"}}
	b := map[string]interface{}{"range": map[string]interface{}{"to": "2026-02-01", "from": "2026-01-01"}}

	assert.Equal(t, Key("recalls", a), Key("recalls", b))
}

func TestKey_TruncatedToMaxLen(t *testing.T) {
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'q'
	}

	key := Key(string(long), map[string]interface{}{"source": "FDA"})
	assert.LessOrEqual(t, len(key), DefaultMaxKeyLen)
}

func TestCache_RoundTrip(t *testing.T) {
	st := testutil.NewMockStore()
	cache := New(st)
	ctx := context.Background()
	filters := map[string]interface{}{"source": "FDA"}
	payload := json.RawMessage(`{"alerts":[{"id":"a1"}]}`)

	_, ok := cache.Get(ctx, "recalls", filters)
	require.False(t, ok)

	cache.Put(ctx, "recalls", filters, payload)

	got, ok := cache.Get(ctx, "recalls", filters)
	require.True(t, ok)
	assert.JSONEq(t, string(payload), string(got))
}

func TestCache_LazyExpiry(t *testing.T) {
	st := testutil.NewMockStore()
	now := time.Now()
	clock := &now
	cache := New(st, WithTTL(30*time.Minute), WithClock(func() time.Time { return *clock }))
	ctx := context.Background()
	filters := map[string]interface{}{"source": "USDA"}

	cache.Put(ctx, "labeling", filters, json.RawMessage(`{"alerts":[]}`))

	// Just inside the window.
	later := now.Add(29 * time.Minute)
	clock = &later
	_, ok := cache.Get(ctx, "labeling", filters)
	assert.True(t, ok)

	// Past expiry: miss, and the row is removed.
	expired := now.Add(31 * time.Minute)
	clock = &expired
	_, ok = cache.Get(ctx, "labeling", filters)
	assert.False(t, ok)
	assert.Equal(t, 0, st.CacheLen())

	// Second get after removal is still a clean miss.
	_, ok = cache.Get(ctx, "labeling", filters)
	assert.False(t, ok)
}

func TestCache_QueryTruncatedOnPut(t *testing.T) {
	st := testutil.NewMockStore()
	cache := New(st)
	ctx := context.Background()

	long := make([]byte, 800)
	for i := range long {
		long[i] = 'x'
	}
	cache.Put(ctx, string(long), nil, json.RawMessage(`{}`))

	entry, err := st.GetCacheEntry(ctx, Key(string(long), nil))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Len(t, entry.Query, DefaultMaxQueryLen)
}

func TestCache_CustomLimits(t *testing.T) {
	st := testutil.NewMockStore()
	cache := New(st, WithLimits(64, 32))
	ctx := context.Background()

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'z'
	}
	cache.Put(ctx, string(long), map[string]interface{}{"source": "FDA"}, json.RawMessage(`{}`))

	entry, err := st.GetCacheEntry(ctx, cache.key(string(long), map[string]interface{}{"source": "FDA"}))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.LessOrEqual(t, len(entry.CacheKey), 64)
	assert.Len(t, entry.Query, 32)

	// The limited key must still round-trip through Get.
	_, ok := cache.Get(ctx, string(long), map[string]interface{}{"source": "FDA"})
	assert.True(t, ok)
}

func TestCache_TruncationKeepsValidUTF8(t *testing.T) {
	st := testutil.NewMockStore()
	cache := New(st)
	ctx := context.Background()

	// 3-byte runes behind a 1-byte prefix, so a byte-wise cut at either
	// limit would land mid-rune.
	query := "q" + strings.Repeat("規", 300)
	cache.Put(ctx, query, nil, json.RawMessage(`{}`))

	entry, err := st.GetCacheEntry(ctx, cache.key(query, nil))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, utf8.ValidString(entry.CacheKey))
	assert.True(t, utf8.ValidString(entry.Query))
	assert.LessOrEqual(t, len(entry.CacheKey), DefaultMaxKeyLen)
	assert.LessOrEqual(t, len(entry.Query), DefaultMaxQueryLen)
}

func TestCache_StorageFailuresSwallowed(t *testing.T) {
	st := testutil.NewMockStore()
	st.FailCache = true
	cache := New(st)
	ctx := context.Background()

	// None of these may panic or surface an error.
	cache.Put(ctx, "recalls", nil, json.RawMessage(`{}`))
	_, ok := cache.Get(ctx, "recalls", nil)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Sweep(ctx))
}

func TestCache_Sweep(t *testing.T) {
	st := testutil.NewMockStore()
	now := time.Now()
	clock := &now
	cache := New(st, WithTTL(10*time.Minute), WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	cache.Put(ctx, "one", nil, json.RawMessage(`{}`))
	cache.Put(ctx, "two", nil, json.RawMessage(`{}`))

	later := now.Add(time.Hour)
	clock = &later
	assert.Equal(t, 2, cache.Sweep(ctx))
	assert.Equal(t, 0, st.CacheLen())
}
