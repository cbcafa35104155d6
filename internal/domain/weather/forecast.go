package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/yanqian/travel-planner/pkg/errors"
	"github.com/yanqian/travel-planner/pkg/metrics"
	"github.com/yanqian/travel-planner/pkg/retry"
)

// ForecastClient fetches daily forecasts with validation, caching and retries.
type ForecastClient struct {
	provider ForecastProvider
	cache    Cache[[]DailyForecast]
	policy   retry.Policy
	ttl      time.Duration
	counters *metrics.Counters
	logger   *slog.Logger
}

// NewForecastClient wires the forecast side of the weather domain.
func NewForecastClient(cfg Config, provider ForecastProvider, cache Cache[[]DailyForecast], counters *metrics.Counters, logger *slog.Logger) *ForecastClient {
	c := &ForecastClient{
		provider: provider,
		cache:    cache,
		ttl:      cfg.ForecastTTL,
		counters: counters,
		logger:   logger.With("component", "weather.forecast"),
	}
	c.policy = withRetryLogging(cfg.Retry, "forecast", counters, c.logger)
	return c
}

// GetForecast returns days daily entries for location, ordered by date.
func (c *ForecastClient) GetForecast(ctx context.Context, location Location, days int) ([]DailyForecast, error) {
	if days < MinForecastDays || days > MaxForecastDays {
		return nil, apperrors.Validation("invalid_days", fmt.Sprintf("forecast days must be between %d and %d", MinForecastDays, MaxForecastDays))
	}
	if !location.ValidCoordinates() {
		return nil, apperrors.Validation("invalid_coordinates", "invalid coordinates provided")
	}

	lat := RoundCoordinate(location.Latitude)
	lon := RoundCoordinate(location.Longitude)
	key := forecastKey(lat, lon, days)

	if cached, ok := c.lookup(ctx, key); ok {
		c.counters.Increment(metrics.ForecastCacheHits)
		c.logger.Debug("forecast cache hit", "key", key)
		return cached, nil
	}

	c.counters.Increment(metrics.ForecastRequests)
	forecasts, err := retry.Do(ctx, c.policy, func(ctx context.Context) ([]DailyForecast, error) {
		window, err := c.provider.Daily(ctx, lat, lon, days)
		if err != nil {
			return nil, err
		}
		if len(window) != days {
			return nil, apperrors.UpstreamLogic(fmt.Sprintf("expected %d forecast days, got %d", days, len(window)), nil)
		}
		return window, nil
	})
	if err != nil {
		c.counters.Increment(metrics.ForecastErrors)
		return nil, apperrors.Wrap("forecast_failed", "forecast failed", err)
	}

	if err := c.cache.Set(ctx, key, forecasts, c.ttl); err != nil {
		c.logger.Warn("forecast cache write failed", "key", key, "error", err)
	}
	return forecasts, nil
}

func (c *ForecastClient) lookup(ctx context.Context, key string) ([]DailyForecast, bool) {
	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("forecast cache read failed", "key", key, "error", err)
		return nil, false
	}
	return cached, ok
}

// RoundCoordinate rounds to CoordinatePrecision decimals, matching what is sent upstream.
func RoundCoordinate(v float64) float64 {
	rounded, _ := strconv.ParseFloat(FormatCoordinate(v), 64)
	return rounded
}

// FormatCoordinate renders v with CoordinatePrecision decimals.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', CoordinatePrecision, 64)
}

func forecastKey(lat, lon float64, days int) string {
	return fmt.Sprintf("forecast:%s:%s:%d", FormatCoordinate(lat), FormatCoordinate(lon), days)
}
