// Package cache provides a generic in-memory TTL cache.
package cache

import (
	"sync"
	"time"
)

// Observer is told about every lookup: op is "get", result "hit" or "miss".
type Observer func(op, result string)

// Option configures a cache.
type Option func(*settings)

type settings struct {
	observer Observer
	now      func() time.Time
}

// WithObserver reports lookups to fn, e.g. for metrics.
func WithObserver(fn Observer) Option {
	return func(s *settings) {
		s.observer = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.RWMutex
	loadMu   sync.Mutex
	items    map[K]entry[V]
	ttl      time.Duration
	now      func() time.Time
	observer Observer
}

// New creates a cache whose entries live for ttl.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[K, V]{
		items:    make(map[K]entry[V]),
		ttl:      ttl,
		now:      s.now,
		observer: s.observer,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiresAt) {
		c.observe("miss")
		var zero V
		return zero, false
	}
	c.observe("hit")
	return e.value, true
}

// Set stores value under key for the configured TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Concurrent misses are collapsed into a single load. Errors are not cached.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// Another caller may have filled the entry while we waited.
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if ok && !c.now().After(e.expiresAt) {
		return e.value, nil
	}

	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Cleanup removes expired entries.
func (c *Cache[K, V]) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[K, V]) observe(result string) {
	if c.observer != nil {
		c.observer("get", result)
	}
}
