package weather

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/travel-planner/pkg/errors"
	"github.com/yanqian/travel-planner/pkg/metrics"
)

var london = Location{Name: "London", Latitude: 51.50853, Longitude: -0.12574}

func threeDays() []DailyForecast {
	return []DailyForecast{
		{Date: "2024-07-01", TemperatureMax: 15, TemperatureMin: 8, Precipitation: 0, WeatherCode: 0},
		{Date: "2024-07-02", TemperatureMax: 16, TemperatureMin: 9, Precipitation: 2.5, WeatherCode: 1},
		{Date: "2024-07-03", TemperatureMax: 14, TemperatureMin: 7, Precipitation: 5, WeatherCode: 61},
	}
}

func TestGetForecast_RejectsInvalidDays(t *testing.T) {
	for _, days := range []int{0, 17, -1} {
		provider := &stubForecaster{}
		cache := newMemoryCache[[]DailyForecast]()
		client := NewForecastClient(testConfig(), provider, cache, nil, newTestLogger())

		_, err := client.GetForecast(context.Background(), london, days)
		require.Error(t, err)
		require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		require.True(t, apperrors.IsCode(err, "invalid_days"))
		require.Zero(t, provider.calls)
		require.Empty(t, cache.sets)
	}
}

func TestGetForecast_RejectsInvalidCoordinates(t *testing.T) {
	cases := []Location{
		{Name: "north", Latitude: 91, Longitude: 0},
		{Name: "east", Latitude: 0, Longitude: 181},
		{Name: "nan", Latitude: math.NaN(), Longitude: 0},
		{Name: "inf", Latitude: 0, Longitude: math.Inf(-1)},
	}
	for _, loc := range cases {
		provider := &stubForecaster{}
		client := NewForecastClient(testConfig(), provider, newMemoryCache[[]DailyForecast](), nil, newTestLogger())

		_, err := client.GetForecast(context.Background(), loc, 3)
		require.Error(t, err, loc.Name)
		require.True(t, apperrors.IsCode(err, "invalid_coordinates"), loc.Name)
		require.True(t, apperrors.IsKind(err, apperrors.KindValidation), loc.Name)
		require.Zero(t, provider.calls, loc.Name)
	}
}

func TestGetForecast_RoundsCoordinatesAndCaches(t *testing.T) {
	provider := &stubForecaster{series: threeDays()}
	cache := newMemoryCache[[]DailyForecast]()
	counters := metrics.NewCounters()
	client := NewForecastClient(testConfig(), provider, cache, counters, newTestLogger())

	got, err := client.GetForecast(context.Background(), london, 3)
	require.NoError(t, err)
	require.Equal(t, threeDays(), got)
	require.Equal(t, 51.5085, provider.lastLat)
	require.Equal(t, -0.1257, provider.lastLon)
	require.Equal(t, 3, provider.lastDays)
	require.Equal(t, []string{"forecast:51.5085:-0.1257:3"}, cache.sets)

	nearby := london
	nearby.Latitude = 51.50849
	again, err := client.GetForecast(context.Background(), nearby, 3)
	require.NoError(t, err)
	require.Equal(t, got, again)
	require.Equal(t, 1, provider.calls)
	require.Equal(t, int64(1), counters.Get(metrics.ForecastCacheHits))
}

func TestGetForecast_DaysArePartOfKey(t *testing.T) {
	provider := &stubForecaster{}
	client := NewForecastClient(testConfig(), provider, newMemoryCache[[]DailyForecast](), nil, newTestLogger())

	_, err := client.GetForecast(context.Background(), london, 3)
	require.NoError(t, err)
	_, err = client.GetForecast(context.Background(), london, 7)
	require.NoError(t, err)
	require.Equal(t, 2, provider.calls)
}

func TestGetForecast_ShortWindowIsRejectedAndNotCached(t *testing.T) {
	for _, series := range [][]DailyForecast{{}, threeDays()} {
		provider := &stubForecaster{series: series}
		cache := newMemoryCache[[]DailyForecast]()
		client := NewForecastClient(testConfig(), provider, cache, nil, newTestLogger())

		got, err := client.GetForecast(context.Background(), london, 7)
		require.Error(t, err)
		require.Nil(t, got)
		require.True(t, apperrors.IsCode(err, "forecast_failed"))
		require.True(t, apperrors.IsKind(err, apperrors.KindUpstreamLogic))
		require.Contains(t, err.Error(), "expected 7 forecast days")
		require.Equal(t, 1, provider.calls)
		require.Empty(t, cache.sets)
	}
}

func TestGetForecast_WrapsFailure(t *testing.T) {
	provider := &stubForecaster{err: apperrors.UpstreamLogic("no forecast data available", nil)}
	client := NewForecastClient(testConfig(), provider, newMemoryCache[[]DailyForecast](), nil, newTestLogger())

	_, err := client.GetForecast(context.Background(), london, 3)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "forecast_failed"))
	require.True(t, apperrors.IsKind(err, apperrors.KindUpstreamLogic))
	require.Equal(t, 1, provider.calls)
}

func TestGetForecast_RetriesUnknownFailures(t *testing.T) {
	provider := &stubForecaster{err: errors.New("unexpected EOF")}
	counters := metrics.NewCounters()
	client := NewForecastClient(testConfig(), provider, newMemoryCache[[]DailyForecast](), counters, newTestLogger())

	_, err := client.GetForecast(context.Background(), london, 3)
	require.Error(t, err)
	require.Equal(t, 3, provider.calls)
	require.Equal(t, int64(2), counters.Get(metrics.RetryAttempts))
	require.Equal(t, int64(1), counters.Get(metrics.ForecastErrors))
}

func TestCodeClassification(t *testing.T) {
	for _, c := range []Code{71, 73, 75, 77, 85, 86} {
		require.True(t, c.IsSnow(), c)
	}
	for _, c := range []Code{0, 3, 61, 70, 78, 84, 95} {
		require.False(t, c.IsSnow(), c)
	}
	require.True(t, Code(2).IsClear())
	require.False(t, Code(3).IsClear())
	require.Equal(t, "Snow showers", Code(86).Description())
	require.Equal(t, "Unknown", Code(42).Description())
}

func TestRoundCoordinate(t *testing.T) {
	require.Equal(t, 51.5085, RoundCoordinate(51.50853))
	require.Equal(t, "-0.1257", FormatCoordinate(-0.12574))
	require.Equal(t, "10.0000", FormatCoordinate(10))
}

func TestDailyForecastJSONIncludesDescription(t *testing.T) {
	payload, err := json.Marshal(threeDays()[2])
	require.NoError(t, err)
	require.JSONEq(t, `{"date":"2024-07-03","temperatureMax":14,"temperatureMin":7,"precipitation":5,"weatherCode":61,"weatherDescription":"Rain"}`, string(payload))

	var decoded DailyForecast
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, threeDays()[2], decoded)
}
