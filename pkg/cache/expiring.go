// Package cache provides a time-bounded in-memory memoization map.
package cache

import (
	"sync"
	"time"

	"github.com/yanqian/travel-planner/pkg/util"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// ExpiringCache stores values until their TTL elapses. Stale entries are
// removed lazily when their key is looked up; there is no size bound and no
// background sweep.
type ExpiringCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	now     util.Clock
}

// Option customises an ExpiringCache.
type Option func(*options)

type options struct {
	now util.Clock
}

// WithClock overrides the time source.
func WithClock(now util.Clock) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New builds an empty cache.
func New[K comparable, V any](opts ...Option) *ExpiringCache[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &ExpiringCache[K, V]{
		entries: make(map[K]entry[V]),
		now:     o.now,
	}
}

// Set stores value under key, replacing any previous entry.
func (c *ExpiringCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Get returns the value for key if it has not expired.
func (c *ExpiringCache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if c.now().Before(e.expiresAt) {
		return e.value, true
	}

	c.mu.Lock()
	// another writer may have refreshed the key in between
	if cur, still := c.entries[key]; still && !c.now().Before(cur.expiresAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return zero, false
}

// Clear drops every entry.
func (c *ExpiringCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len reports the number of stored entries, stale ones included.
func (c *ExpiringCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
