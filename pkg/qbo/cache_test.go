package qbo_test

import (
	"context"
	"testing"
	"time"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		cache := qbo.NewMemoryCache(10)
		entry := &qbo.CacheEntry{
			Data:      []byte(`{"Invoice":{"Id":"1"}}`),
			ExpiresAt: time.Now().Add(time.Minute),
		}

		require.NoError(t, cache.Set(ctx, "GET:company/1/invoice/1", entry))
		got, err := cache.Get(ctx, "GET:company/1/invoice/1")
		require.NoError(t, err)
		assert.Equal(t, entry.Data, got.Data)
		assert.True(t, cache.Has(ctx, "GET:company/1/invoice/1"))
	})

	t.Run("expired entries read as missing", func(t *testing.T) {
		t.Parallel()

		cache := qbo.NewMemoryCache(10)
		entry := &qbo.CacheEntry{
			Data:      []byte("stale"),
			ExpiresAt: time.Now().Add(-time.Second),
		}

		require.NoError(t, cache.Set(ctx, "key", entry))

		_, err := cache.Get(ctx, "key")
		require.ErrorIs(t, err, qbo.ErrCacheEntryStale)
		assert.False(t, cache.Has(ctx, "key"))
	})

	t.Run("eviction keeps the cache at its cap", func(t *testing.T) {
		t.Parallel()

		cache := qbo.NewMemoryCache(2)

		oldest := &qbo.CacheEntry{Data: []byte("a"), ExpiresAt: time.Now().Add(time.Minute)}
		require.NoError(t, cache.Set(ctx, "a", oldest))
		require.NoError(t, cache.Set(ctx, "b", &qbo.CacheEntry{Data: []byte("b"), ExpiresAt: time.Now().Add(2 * time.Minute)}))
		require.NoError(t, cache.Set(ctx, "c", &qbo.CacheEntry{Data: []byte("c"), ExpiresAt: time.Now().Add(3 * time.Minute)}))

		_, err := cache.Get(ctx, "a")
		require.Error(t, err)
		assert.True(t, cache.Has(ctx, "b"))
		assert.True(t, cache.Has(ctx, "c"))
	})

	t.Run("cleanup drops expired entries", func(t *testing.T) {
		t.Parallel()

		cache := qbo.NewMemoryCache(10)
		require.NoError(t, cache.Set(ctx, "live", &qbo.CacheEntry{ExpiresAt: time.Now().Add(time.Minute)}))
		require.NoError(t, cache.Set(ctx, "dead", &qbo.CacheEntry{ExpiresAt: time.Now().Add(-time.Minute)}))

		cache.Cleanup()

		assert.True(t, cache.Has(ctx, "live"))
		assert.False(t, cache.Has(ctx, "dead"))
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		t.Parallel()

		cache := qbo.NewMemoryCache(10)
		require.NoError(t, cache.Set(ctx, "key", &qbo.CacheEntry{ExpiresAt: time.Now().Add(time.Minute)}))
		require.NoError(t, cache.Clear(ctx))
		assert.False(t, cache.Has(ctx, "key"))
	})
}

func TestCachingPolicy_ShouldCache(t *testing.T) {
	t.Parallel()

	policy := qbo.DefaultCachingPolicy()

	tests := []struct {
		name   string
		method string
		path   string
		status int
		want   bool
	}{
		{"entity read", "GET", "company/1/invoice/145", 200, true},
		{"query", "GET", "company/1/query", 200, true},
		{"write", "POST", "company/1/invoice", 200, false},
		{"batch excluded", "GET", "company/1/batch", 200, false},
		{"pdf excluded", "GET", "company/1/invoice/145/pdf", 200, false},
		{"error not cached", "GET", "company/1/invoice/145", 404, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, policy.ShouldCache(tt.method, tt.path, tt.status))
		})
	}
}

func TestCacheManager(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stable keys regardless of param order", func(t *testing.T) {
		t.Parallel()

		manager := qbo.NewCacheManager(qbo.NewMemoryCache(10), nil, nil)

		key1 := manager.GetCacheKey("GET", "company/1/query", map[string]string{"query": "q", "minorversion": "75"})
		key2 := manager.GetCacheKey("GET", "company/1/query", map[string]string{"minorversion": "75", "query": "q"})
		assert.Equal(t, key1, key2)
	})

	t.Run("hit rate tracks lookups", func(t *testing.T) {
		t.Parallel()

		manager := qbo.NewCacheManager(qbo.NewMemoryCache(10), nil, nil)
		key := manager.GetCacheKey("GET", "company/1/invoice/1", nil)

		_, ok := manager.Get(ctx, key)
		assert.False(t, ok)

		manager.Set(ctx, key, "GET", "company/1/invoice/1", 200, []byte("body"))

		body, ok := manager.Get(ctx, key)
		assert.True(t, ok)
		assert.Equal(t, []byte("body"), body)

		stats := manager.GetStats()
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
		assert.InEpsilon(t, 0.5, stats.GetHitRate(), 0.001)
	})

	t.Run("policy blocks writes from being stored", func(t *testing.T) {
		t.Parallel()

		manager := qbo.NewCacheManager(qbo.NewMemoryCache(10), nil, nil)
		key := manager.GetCacheKey("POST", "company/1/invoice", nil)

		manager.Set(ctx, key, "POST", "company/1/invoice", 200, []byte("body"))

		_, ok := manager.Get(ctx, key)
		assert.False(t, ok)
	})

	t.Run("invalidate drops the entry", func(t *testing.T) {
		t.Parallel()

		manager := qbo.NewCacheManager(qbo.NewMemoryCache(10), nil, nil)
		key := manager.GetCacheKey("GET", "company/1/invoice/1", nil)

		manager.Set(ctx, key, "GET", "company/1/invoice/1", 200, []byte("body"))
		manager.Invalidate(ctx, key)

		_, ok := manager.Get(ctx, key)
		assert.False(t, ok)
	})
}

func TestCacheChain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	l1 := qbo.NewMemoryCache(10)
	l2 := qbo.NewMemoryCache(10)
	chain := qbo.NewCacheChain(l1, l2)

	entry := &qbo.CacheEntry{Data: []byte("shared"), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, l2.Set(ctx, "key", entry))

	// A hit in L2 backfills L1.
	got, err := chain.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)
	assert.True(t, l1.Has(ctx, "key"))

	_, err = chain.Get(ctx, "absent")
	require.ErrorIs(t, err, qbo.ErrKeyNotFoundInAnyCache)
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := qbo.NewNoOpCache()

	require.NoError(t, cache.Set(ctx, "key", &qbo.CacheEntry{}))

	_, err := cache.Get(ctx, "key")
	require.ErrorIs(t, err, qbo.ErrCacheDisabled)
	assert.False(t, cache.Has(ctx, "key"))
}

func TestNewCacheFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults to memory", func(t *testing.T) {
		t.Parallel()

		cache, err := qbo.NewCacheFromConfig(nil)
		require.NoError(t, err)
		assert.IsType(t, &qbo.MemoryCache{}, cache)
	})

	t.Run("none yields the no-op cache", func(t *testing.T) {
		t.Parallel()

		cache, err := qbo.NewCacheFromConfig(&qbo.CacheConfig{Type: qbo.CacheTypeNone})
		require.NoError(t, err)
		assert.IsType(t, &qbo.NoOpCache{}, cache)
	})

	t.Run("nats without config is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := qbo.NewCacheFromConfig(&qbo.CacheConfig{Type: qbo.CacheTypeNATS})
		require.ErrorIs(t, err, qbo.ErrNATSConfigRequired)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := qbo.NewCacheFromConfig(&qbo.CacheConfig{Type: qbo.CacheType("redis")})
		require.ErrorIs(t, err, qbo.ErrUnsupportedCacheType)
	})
}
