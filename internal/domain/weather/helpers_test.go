package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/yanqian/travel-planner/pkg/cache"
	"github.com/yanqian/travel-planner/pkg/retry"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Retry: retry.Policy{
			Timeout:     time.Second,
			MaxRetries:  2,
			BaseBackoff: time.Second,
			Sleep: func(ctx context.Context, d time.Duration) error {
				return nil
			},
		},
		GeocodingTTL: time.Hour,
		ForecastTTL:  time.Hour,
	}
}

type memoryCache[V any] struct {
	inner   *cache.ExpiringCache[string, V]
	sets    []string
	failGet bool
}

func newMemoryCache[V any]() *memoryCache[V] {
	return &memoryCache[V]{inner: cache.New[string, V]()}
}

func (m *memoryCache[V]) Get(_ context.Context, key string) (V, bool, error) {
	if m.failGet {
		var zero V
		return zero, false, errors.New("cache unavailable")
	}
	v, ok := m.inner.Get(key)
	return v, ok, nil
}

func (m *memoryCache[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.sets = append(m.sets, key)
	m.inner.Set(key, value, ttl)
	return nil
}

type stubGeocoder struct {
	mu        sync.Mutex
	results   []Location
	errs      []error
	calls     int
	lastQuery string
	lastLimit int
}

func (s *stubGeocoder) Search(_ context.Context, query string, limit int) ([]Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastQuery = query
	s.lastLimit = limit
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.results, nil
}

type stubForecaster struct {
	mu       sync.Mutex
	series   []DailyForecast
	err      error
	calls    int
	lastLat  float64
	lastLon  float64
	lastDays int
}

func (s *stubForecaster) Daily(_ context.Context, lat, lon float64, days int) ([]DailyForecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastLat, s.lastLon, s.lastDays = lat, lon, days
	if s.err != nil {
		return nil, s.err
	}
	if s.series == nil {
		return window(days), nil
	}
	return s.series, nil
}

// window builds n mild, dry days starting 2024-07-01.
func window(n int) []DailyForecast {
	out := make([]DailyForecast, n)
	for i := range out {
		out[i] = DailyForecast{Date: fmt.Sprintf("2024-07-%02d", i+1), TemperatureMax: 20, TemperatureMin: 12, WeatherCode: 1}
	}
	return out
}

func strPtr(v string) *string { return &v }
