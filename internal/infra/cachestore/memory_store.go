// Package cachestore holds the cache backends used to memoize upstream weather lookups.
package cachestore

import (
	"context"
	"time"

	"github.com/yanqian/travel-planner/internal/domain/weather"
	"github.com/yanqian/travel-planner/pkg/cache"
	"github.com/yanqian/travel-planner/pkg/util"
)

// MemoryStore is a process-local cache. Entries expire lazily on lookup.
type MemoryStore[V any] struct {
	entries *cache.ExpiringCache[string, V]
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore[V any](clock util.Clock) *MemoryStore[V] {
	return &MemoryStore[V]{entries: cache.New[string, V](cache.WithClock(clock))}
}

// Get implements weather.Cache.
func (s *MemoryStore[V]) Get(_ context.Context, key string) (V, bool, error) {
	value, ok := s.entries.Get(key)
	return value, ok, nil
}

// Set implements weather.Cache. A non-positive ttl is ignored.
func (s *MemoryStore[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.entries.Set(key, value, ttl)
	return nil
}

// Len reports how many entries are held, including ones not yet evicted.
func (s *MemoryStore[V]) Len() int {
	return s.entries.Len()
}

var (
	_ weather.Cache[[]weather.Location]      = (*MemoryStore[[]weather.Location])(nil)
	_ weather.Cache[[]weather.DailyForecast] = (*MemoryStore[[]weather.DailyForecast])(nil)
)
