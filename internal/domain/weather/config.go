package weather

import (
	"time"

	"github.com/yanqian/travel-planner/pkg/retry"
)

const (
	MinForecastDays = 1
	MaxForecastDays = 16
	MinSearchLimit  = 1
	MaxSearchLimit  = 100
	MaxQueryLength  = 100

	// CoordinatePrecision is the number of decimals sent upstream and used in cache keys.
	CoordinatePrecision = 4
)

// Config holds runtime knobs for the upstream clients.
type Config struct {
	Retry        retry.Policy
	GeocodingTTL time.Duration
	ForecastTTL  time.Duration
}
