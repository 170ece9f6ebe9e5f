package cache

import (
	"sync"
	"time"
)

// Package cache provides a bounded key/value map with TTL expiry. Instances
// are created per service and injected; there is no package-level state. The
// implementation is safe for concurrent use.

// Policy selects which entry is dropped when the cache exceeds capacity.
type Policy int

const (
	// EvictOldest removes the entry with the earliest capture time. Use for
	// caches whose freshness guarantees matter (listing/article fetches).
	EvictOldest Policy = iota
	// EvictAny removes an arbitrary entry.
	EvictAny
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a bounded TTL cache.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[string]entry[V]
	capacity int
	ttl      time.Duration
	policy   Policy
	now      func() time.Time
}

// New builds a cache holding at most capacity entries, each valid for ttl.
func New[V any](capacity int, ttl time.Duration, policy Policy) *Cache[V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache[V]{
		entries:  make(map[string]entry[V], capacity),
		capacity: capacity,
		ttl:      ttl,
		policy:   policy,
		now:      time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, evicting one entry if the cache is over
// capacity afterwards.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	if len(c.entries) <= c.capacity {
		return
	}

	switch c.policy {
	case EvictOldest:
		var oldestKey string
		var oldestAt time.Time
		first := true
		for k, e := range c.entries {
			if first || e.storedAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.storedAt
				first = false
			}
		}
		delete(c.entries, oldestKey)
	default:
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
}

// Len reports the number of stored entries, including expired ones not yet
// collected by Get.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
