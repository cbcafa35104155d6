package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/travel-planner/internal/domain/planner"
	"github.com/yanqian/travel-planner/internal/domain/weather"
	"github.com/yanqian/travel-planner/internal/infra/cachestore"
	"github.com/yanqian/travel-planner/internal/infra/config"
	"github.com/yanqian/travel-planner/internal/infra/openmeteo"
	"github.com/yanqian/travel-planner/pkg/retry"
	"github.com/yanqian/travel-planner/pkg/util"
)

func provideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{
		Retry: retry.Policy{
			Timeout:     cfg.Upstream.Timeout,
			MaxRetries:  cfg.Upstream.MaxRetries,
			BaseBackoff: cfg.Upstream.BaseBackoff,
		},
		GeocodingTTL: cfg.Cache.GeocodingTTL,
		ForecastTTL:  cfg.Cache.ForecastTTL,
	}
}

func providePlannerConfig(cfg *config.Config) planner.Config {
	return planner.Config{
		DefaultLimit: cfg.Planner.DefaultLimit,
		DefaultDays:  cfg.Planner.DefaultDays,
		Concurrency:  cfg.Planner.Concurrency,
	}
}

func provideOpenMeteoClient(cfg *config.Config) *openmeteo.Client {
	// the retry policy owns per-attempt deadlines; this is only a backstop
	backstop := cfg.Upstream.Timeout * 2
	return openmeteo.NewClient(openmeteo.Options{
		GeocodingBaseURL:  cfg.Upstream.GeocodingBaseURL,
		ForecastBaseURL:   cfg.Upstream.ForecastBaseURL,
		UserAgent:         cfg.Upstream.UserAgent,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
		HTTPClient:        &http.Client{Timeout: backstop},
	})
}

// provideValkeyClient returns nil when the shared cache is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if !cfg.Cache.Valkey.Enabled {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey cache enabled", "addr", cfg.Cache.Valkey.Addr)
	return client, client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideGeocodingCache(cfg *config.Config, client valkey.Client) weather.Cache[[]weather.Location] {
	if client != nil {
		return cachestore.NewValkeyStore[[]weather.Location](client, cfg.Cache.Valkey.Prefix)
	}
	return cachestore.NewMemoryStore[[]weather.Location](util.NowUTC)
}

func provideForecastCache(cfg *config.Config, client valkey.Client) weather.Cache[[]weather.DailyForecast] {
	if client != nil {
		return cachestore.NewValkeyStore[[]weather.DailyForecast](client, cfg.Cache.Valkey.Prefix)
	}
	return cachestore.NewMemoryStore[[]weather.DailyForecast](util.NowUTC)
}
