package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/travel-planner/pkg/errors"
	"github.com/yanqian/travel-planner/pkg/metrics"
	"github.com/yanqian/travel-planner/pkg/retry"
	"github.com/yanqian/travel-planner/pkg/util"
)

// GeocodingClient resolves free text to candidate locations with caching and retries.
type GeocodingClient struct {
	provider GeocodingProvider
	cache    Cache[[]Location]
	policy   retry.Policy
	ttl      time.Duration
	counters *metrics.Counters
	logger   *slog.Logger
}

// NewGeocodingClient wires the geocoding side of the weather domain.
func NewGeocodingClient(cfg Config, provider GeocodingProvider, cache Cache[[]Location], counters *metrics.Counters, logger *slog.Logger) *GeocodingClient {
	c := &GeocodingClient{
		provider: provider,
		cache:    cache,
		ttl:      cfg.GeocodingTTL,
		counters: counters,
		logger:   logger.With("component", "weather.geocoding"),
	}
	c.policy = withRetryLogging(cfg.Retry, "geocoding", counters, c.logger)
	return c
}

// SearchLocations returns up to limit candidates for query, in upstream ranking order.
func (c *GeocodingClient) SearchLocations(ctx context.Context, query string, limit int) ([]Location, error) {
	normalized := SanitizeQuery(query)
	if normalized == "" {
		return []Location{}, nil
	}
	limit = util.ClampInt(limit, MinSearchLimit, MaxSearchLimit)

	key := geocodingKey(normalized, limit)
	if cached, ok := c.lookup(ctx, key); ok {
		c.counters.Increment(metrics.GeocodingCacheHits)
		c.logger.Debug("geocoding cache hit", "query", normalized, "limit", limit)
		return cached, nil
	}

	c.counters.Increment(metrics.GeocodingRequests)
	locations, err := retry.Do(ctx, c.policy, func(ctx context.Context) ([]Location, error) {
		return c.provider.Search(ctx, normalized, limit)
	})
	if err != nil {
		c.counters.Increment(metrics.GeocodingErrors)
		return nil, apperrors.Wrap("geocoding_failed", "geocoding failed", err)
	}
	if locations == nil {
		locations = []Location{}
	}

	if err := c.cache.Set(ctx, key, locations, c.ttl); err != nil {
		c.logger.Warn("geocoding cache write failed", "key", key, "error", err)
	}
	return locations, nil
}

func (c *GeocodingClient) lookup(ctx context.Context, key string) ([]Location, bool) {
	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("geocoding cache read failed", "key", key, "error", err)
		return nil, false
	}
	return cached, ok
}

// geocodingKey folds case: the upstream place search is case-insensitive.
func geocodingKey(query string, limit int) string {
	return fmt.Sprintf("geo:%s:%d", strings.ToLower(query), limit)
}

func withRetryLogging(policy retry.Policy, upstream string, counters *metrics.Counters, logger *slog.Logger) retry.Policy {
	next := policy.OnRetry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		counters.Increment(metrics.RetryAttempts)
		logger.Warn("upstream call failed, retrying", "upstream", upstream, "attempt", attempt, "delay_ms", delay.Milliseconds(), "error", err)
		if next != nil {
			next(attempt, delay, err)
		}
	}
	return policy
}
