package planner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/travel-planner/internal/domain/activity"
	"github.com/yanqian/travel-planner/internal/domain/weather"
	apperrors "github.com/yanqian/travel-planner/pkg/errors"
	"github.com/yanqian/travel-planner/pkg/metrics"
	"github.com/yanqian/travel-planner/pkg/util"
)

// Service exposes the location search with weather and activity ranking.
type Service interface {
	Search(ctx context.Context, req Request) (Response, error)
}

// LocationSearcher resolves free text to candidate locations.
type LocationSearcher interface {
	SearchLocations(ctx context.Context, query string, limit int) ([]weather.Location, error)
}

// ForecastGetter fetches the forecast window for one location.
type ForecastGetter interface {
	GetForecast(ctx context.Context, location weather.Location, days int) ([]weather.DailyForecast, error)
}

type service struct {
	cfg       Config
	locations LocationSearcher
	forecasts ForecastGetter
	rank      func([]weather.DailyForecast) []activity.Score
	counters  *metrics.Counters
	logger    *slog.Logger
}

// NewService wires up the planner domain.
func NewService(cfg Config, locations LocationSearcher, forecasts ForecastGetter, counters *metrics.Counters, logger *slog.Logger) Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = DefaultDays
	}
	return &service{
		cfg:       cfg,
		locations: locations,
		forecasts: forecasts,
		rank:      activity.Rank,
		counters:  counters,
		logger:    logger.With("component", "planner.service"),
	}
}

func (s *service) Search(ctx context.Context, req Request) (Response, error) {
	query := weather.SanitizeQuery(req.Query)
	if query == "" {
		return Response{Locations: []LocationResult{}}, nil
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	limit = util.ClampInt(limit, weather.MinSearchLimit, weather.MaxSearchLimit)
	days := req.Days
	if days == 0 {
		days = s.cfg.DefaultDays
	}

	start := time.Now()
	locations, err := s.locations.SearchLocations(ctx, query, limit)
	if err != nil {
		return Response{}, apperrors.Wrap("location_lookup_failed", "location lookup failed", err)
	}

	results := make([]LocationResult, len(locations))
	g, gCtx := errgroup.WithContext(ctx)
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	for i, loc := range locations {
		g.Go(func() error {
			results[i] = s.resolve(gCtx, loc, days)
			// failures are isolated per location and never cancel siblings
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("search completed", "query", query, "limit", limit, "days", days, "locations", len(results), "duration_ms", time.Since(start).Milliseconds())
	return Response{Locations: results}, nil
}

func (s *service) resolve(ctx context.Context, loc weather.Location, days int) LocationResult {
	forecast, err := s.forecasts.GetForecast(ctx, loc, days)
	if err != nil {
		s.counters.Increment(metrics.PlannerDegraded)
		s.logger.Warn("forecast unavailable, using default rankings", "location", loc.Name, "latitude", loc.Latitude, "longitude", loc.Longitude, "days", days, "error", err)
		return LocationResult{
			Location: loc,
			Forecast: []weather.DailyForecast{},
			Rankings: s.rank(nil),
			Degraded: true,
		}
	}
	if forecast == nil {
		forecast = []weather.DailyForecast{}
	}
	return LocationResult{
		Location: loc,
		Forecast: forecast,
		Rankings: s.rank(forecast),
	}
}
