package planner

import (
	"github.com/yanqian/travel-planner/internal/domain/activity"
	"github.com/yanqian/travel-planner/internal/domain/weather"
)

const (
	DefaultLimit = 10
	DefaultDays  = 7
)

// Config wires runtime knobs for the planner.
type Config struct {
	DefaultLimit int
	DefaultDays  int
	// Concurrency caps simultaneous per-location pipelines. Zero or less means unbounded.
	Concurrency int
}

// Request captures the single query accepted by the planner.
type Request struct {
	Query string `json:"query" form:"query"`
	Limit int    `json:"limit" form:"limit"`
	Days  int    `json:"days" form:"days"`
}

// Response lists results in geocoding order.
type Response struct {
	Locations []LocationResult `json:"locations"`
}

// LocationResult attaches the forecast window and activity ranking to a location.
type LocationResult struct {
	weather.Location
	Forecast []weather.DailyForecast `json:"weatherForecast"`
	Rankings []activity.Score        `json:"activityRankings"`
	// Degraded is set when the forecast could not be fetched and defaults were substituted.
	Degraded bool `json:"degraded,omitempty"`
}
