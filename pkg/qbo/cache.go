package qbo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrCacheKeyNotFound = errors.New("key not found in cache")
	ErrCacheEntryStale  = errors.New("cache entry expired")
)

// CacheEntry is one cached response body with its expiry.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry is past its expiry.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Cache is a pluggable response cache backend.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheOptions are backend-independent cache settings.
type CacheOptions struct {
	// DefaultTTL is applied when a caller does not set an entry expiry.
	DefaultTTL time.Duration
}

// DefaultCacheOptions returns default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{DefaultTTL: 5 * time.Minute}
}

// MemoryCache is an in-memory cache with a hard size cap. When full, the
// entry closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get retrieves an entry, treating expired entries as missing.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheKeyNotFound
	}

	if entry.Expired() {
		_ = c.Delete(ctx, key)

		return nil, ErrCacheEntryStale
	}

	return entry, nil
}

// Set stores an entry, evicting the soonest-to-expire entry when full.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		if _, exists := c.entries[key]; !exists {
			c.evictOldest()
		}
	}

	c.entries[key] = entry

	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has reports whether a non-expired entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Cleanup removes every expired entry. Callers wanting periodic cleanup run
// this from their own ticker.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)
		}
	}
}

func (c *MemoryCache) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
	)

	for key, entry := range c.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// CachingPolicy decides which requests are cacheable. Only entity reads and
// queries are safe to cache; writes always pass through.
type CachingPolicy struct {
	CacheReads   bool
	CacheQueries bool
	CacheErrors  bool

	// IncludePaths restricts caching to path substrings when non-empty.
	IncludePaths []string

	// ExcludePaths always bypass the cache.
	ExcludePaths []string
}

// DefaultCachingPolicy caches entity reads and queries, never errors.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheReads:   true,
		CacheQueries: true,
		ExcludePaths: []string{"/batch", "/pdf", "/send", "/upload", "/cdc", "/reports"},
	}
}

// ShouldCache reports whether a response for this call may be stored.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	if method != "GET" {
		return false
	}

	if statusCode >= 400 && !p.CacheErrors {
		return false
	}

	for _, excluded := range p.ExcludePaths {
		if strings.Contains(path, excluded) {
			return false
		}
	}

	isQuery := strings.Contains(path, "/query")
	if isQuery && !p.CacheQueries {
		return false
	}

	if !isQuery && !p.CacheReads {
		return false
	}

	if len(p.IncludePaths) > 0 {
		for _, included := range p.IncludePaths {
			if strings.Contains(path, included) {
				return true
			}
		}

		return false
	}

	return true
}

// CacheStats tracks cache effectiveness.
type CacheStats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// GetHitRate returns the fraction of lookups served from cache.
func (s CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheManager couples a backend with a policy and tracks stats.
type CacheManager struct {
	cache  Cache
	policy *CachingPolicy
	ttl    time.Duration

	mu    sync.Mutex
	stats CacheStats
}

// NewCacheManager creates a manager over the given backend. A nil policy
// gets the default policy.
func NewCacheManager(cache Cache, policy *CachingPolicy, options *CacheOptions) *CacheManager {
	if policy == nil {
		policy = DefaultCachingPolicy()
	}

	if options == nil {
		options = DefaultCacheOptions()
	}

	return &CacheManager{
		cache:  cache,
		policy: policy,
		ttl:    options.DefaultTTL,
	}
}

// GetCacheKey derives a stable key from the request shape. Query parameters
// are sorted so equivalent requests share an entry.
func (m *CacheManager) GetCacheKey(method, path string, params map[string]string) string {
	if len(params) == 0 {
		return method + ":" + path
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	return fmt.Sprintf("%s:%s:%s", method, path, strings.Join(pairs, "&"))
}

// Get returns the cached body for key, or false on a miss.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, bool) {
	entry, err := m.cache.Get(ctx, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.stats.Misses++

		return nil, false
	}

	m.stats.Hits++

	return entry.Data, true
}

// Set stores a response body under key with the default TTL, if the policy
// allows caching this call.
func (m *CacheManager) Set(ctx context.Context, key, method, path string, statusCode int, body []byte) {
	if !m.policy.ShouldCache(method, path, statusCode) {
		return
	}

	entry := &CacheEntry{
		Data:      body,
		ExpiresAt: time.Now().Add(m.ttl),
	}

	if m.cache.Set(ctx, key, entry) == nil {
		m.mu.Lock()
		m.stats.Sets++
		m.mu.Unlock()
	}
}

// Invalidate drops the entry for key, used after a write to the same
// resource.
func (m *CacheManager) Invalidate(ctx context.Context, key string) {
	_ = m.cache.Delete(ctx, key)
}

// GetStats returns a snapshot of the manager's counters.
func (m *CacheManager) GetStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats
}
