package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/yanqian/travel-planner/internal/domain/weather"
	apperrors "github.com/yanqian/travel-planner/pkg/errors"
)

const dailyFields = "temperature_2m_max,temperature_2m_min,precipitation_sum,weathercode"

type forecastResponse struct {
	apiError
	Daily *daily `json:"daily"`
}

type daily struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WeatherCode      []*int     `json:"weathercode"`
}

// Daily requests the daily forecast window for a coordinate once.
func (c *Client) Daily(ctx context.Context, latitude, longitude float64, days int) ([]weather.DailyForecast, error) {
	params := url.Values{
		"latitude":      {weather.FormatCoordinate(latitude)},
		"longitude":     {weather.FormatCoordinate(longitude)},
		"daily":         {dailyFields},
		"timezone":      {"auto"},
		"forecast_days": {strconv.Itoa(days)},
	}

	var raw forecastResponse
	if err := c.get(ctx, c.forecastLimiter, c.forecastURL, params, &raw); err != nil {
		return nil, err
	}
	if reason, failed := raw.reason(); failed {
		return nil, apperrors.UpstreamLogic("api error: "+reason, nil)
	}
	if raw.Daily == nil {
		return nil, apperrors.UpstreamLogic("no forecast data available", nil)
	}
	return zipDaily(*raw.Daily, days)
}

// zipDaily turns the parallel arrays into one entry per day, by index. A
// window shorter or longer than requested is rejected.
func zipDaily(d daily, days int) ([]weather.DailyForecast, error) {
	n := len(d.Time)
	if n != days {
		return nil, apperrors.UpstreamLogic(fmt.Sprintf("expected %d forecast days, got %d", days, n), nil)
	}
	if len(d.TemperatureMax) != n || len(d.TemperatureMin) != n || len(d.PrecipitationSum) != n || len(d.WeatherCode) != n {
		return nil, apperrors.UpstreamLogic(fmt.Sprintf(
			"daily arrays have mismatched lengths: time=%d max=%d min=%d precipitation=%d code=%d",
			n, len(d.TemperatureMax), len(d.TemperatureMin), len(d.PrecipitationSum), len(d.WeatherCode),
		), nil)
	}

	out := make([]weather.DailyForecast, 0, n)
	for i, date := range d.Time {
		if d.TemperatureMax[i] == nil || d.TemperatureMin[i] == nil || d.PrecipitationSum[i] == nil || d.WeatherCode[i] == nil {
			return nil, apperrors.UpstreamLogic(fmt.Sprintf("incomplete daily values for %s", date), nil)
		}
		out = append(out, weather.DailyForecast{
			Date:           date,
			TemperatureMax: *d.TemperatureMax[i],
			TemperatureMin: *d.TemperatureMin[i],
			Precipitation:  *d.PrecipitationSum[i],
			WeatherCode:    weather.Code(*d.WeatherCode[i]),
		})
	}
	return out, nil
}

var (
	_ weather.GeocodingProvider = (*Client)(nil)
	_ weather.ForecastProvider  = (*Client)(nil)
)
