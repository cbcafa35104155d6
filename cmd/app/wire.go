//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/travel-planner/internal/bootstrap"
	"github.com/yanqian/travel-planner/internal/domain/planner"
	"github.com/yanqian/travel-planner/internal/domain/weather"
	"github.com/yanqian/travel-planner/internal/infra/config"
	"github.com/yanqian/travel-planner/internal/infra/openmeteo"
	httpiface "github.com/yanqian/travel-planner/internal/interface/http"
	"github.com/yanqian/travel-planner/pkg/logger"
	"github.com/yanqian/travel-planner/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewCounters,
		provideWeatherConfig,
		providePlannerConfig,
		provideOpenMeteoClient,
		provideValkeyClient,
		provideGeocodingCache,
		provideForecastCache,
		weather.NewGeocodingClient,
		weather.NewForecastClient,
		planner.NewService,
		wire.Bind(new(weather.GeocodingProvider), new(*openmeteo.Client)),
		wire.Bind(new(weather.ForecastProvider), new(*openmeteo.Client)),
		wire.Bind(new(planner.LocationSearcher), new(*weather.GeocodingClient)),
		wire.Bind(new(planner.ForecastGetter), new(*weather.ForecastClient)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
