package weather

import (
	"context"
	"time"
)

// GeocodingProvider performs a single upstream place search.
type GeocodingProvider interface {
	Search(ctx context.Context, query string, limit int) ([]Location, error)
}

// ForecastProvider performs a single upstream daily forecast request.
type ForecastProvider interface {
	Daily(ctx context.Context, latitude, longitude float64, days int) ([]DailyForecast, error)
}

// Cache memoizes upstream results. Errors are advisory: callers treat a
// failing cache as a miss.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
}
