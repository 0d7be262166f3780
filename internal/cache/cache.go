package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL governs every entry unless a different TTL is injected.
const DefaultTTL = 300 * time.Second

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is an in-memory read-through cache with a single process-wide TTL.
// Expired entries are evicted lazily on the next lookup that finds them,
// there is no background sweep and no size bound. Concurrent misses on the
// same key may each reach the producer; values are idempotent reads, so the
// worst outcome is duplicate work.
type Cache struct {
	log zerolog.Logger
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// New creates a cache with the given TTL and clock. A zero ttl falls back
// to DefaultTTL, a nil now falls back to time.Now.
func New(log zerolog.Logger, ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		log:     log.With().Str("module", "cache").Logger(),
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get returns the value stored under key if it is still within its TTL.
// An expired entry is removed and reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(e.storedAt) < c.ttl {
		return e.value, true
	}

	c.mu.Lock()
	// Re-check under the write lock so a fresh overwrite is not dropped.
	if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	c.log.Trace().Str("key", key).Msg("expired entry evicted")
	return nil, false
}

// Set stores value under key with the current timestamp, overwriting any
// previous entry.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Len returns the number of entries currently held, including any that
// have expired but not yet been evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrCompute returns the cached value for key, or invokes produce on a
// miss. A successful result is stored before being returned. A produce
// error propagates to the caller and nothing is stored, so the next call
// with the same key retries the producer unconditionally.
func GetOrCompute[T any](c *Cache, key string, produce func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			c.log.Trace().Str("key", key).Msg("cache hit")
			return typed, nil
		}
		// A type mismatch means two callers derived the same key for
		// different value shapes. Treat as a miss and overwrite.
		c.log.Warn().Str("key", key).Msg("cached value has unexpected type")
	}

	var zero T
	v, err := produce()
	if err != nil {
		return zero, err
	}

	c.Set(key, v)
	c.log.Trace().Str("key", key).Msg("cache fill")
	return v, nil
}
