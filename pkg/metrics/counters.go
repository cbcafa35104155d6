package metrics

import "sync"

// Counter names recorded by the upstream clients and the planner.
const (
	GeocodingRequests  = "api.geocoding.requests"
	GeocodingCacheHits = "api.geocoding.cache_hits"
	GeocodingErrors    = "api.geocoding.errors"
	ForecastRequests   = "api.forecast.requests"
	ForecastCacheHits  = "api.forecast.cache_hits"
	ForecastErrors     = "api.forecast.errors"
	RetryAttempts      = "api.retry.attempts"
	PlannerDegraded    = "planner.degraded"
)

// Counters is a process-local set of monotonically increasing counters.
// A nil *Counters is valid and records nothing.
type Counters struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewCounters builds an empty counter set.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]int64)}
}

// Increment adds one to the named counter.
func (c *Counters) Increment(name string) {
	c.Add(name, 1)
}

// Add adds delta to the named counter.
func (c *Counters) Add(name string, delta int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[name] += delta
	c.mu.Unlock()
}

// Get returns the current value of a counter.
func (c *Counters) Get(name string) int64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Snapshot copies all counters.
func (c *Counters) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	if c == nil {
		return out
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
