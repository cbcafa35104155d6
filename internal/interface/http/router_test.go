package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/travel-planner/internal/domain/activity"
	"github.com/yanqian/travel-planner/internal/domain/planner"
	"github.com/yanqian/travel-planner/internal/domain/weather"
	"github.com/yanqian/travel-planner/internal/infra/config"
	apperrors "github.com/yanqian/travel-planner/pkg/errors"
	"github.com/yanqian/travel-planner/pkg/metrics"
)

func londonResponse() planner.Response {
	country := "United Kingdom"
	return planner.Response{Locations: []planner.LocationResult{{
		Location: weather.Location{Name: "London", Latitude: 51.50853, Longitude: -0.12574, Country: &country},
		Forecast: []weather.DailyForecast{
			{Date: "2024-07-01", TemperatureMax: 15, TemperatureMin: 8, Precipitation: 0, WeatherCode: 0},
		},
		Rankings: []activity.Score{
			{Activity: activity.OutdoorSightseeing, Score: 70, Suitability: activity.Good},
			{Activity: activity.Surfing, Score: 50, Suitability: activity.Fair},
			{Activity: activity.IndoorSightseeing, Score: 50, Suitability: activity.Fair},
			{Activity: activity.Skiing, Score: 0, Suitability: activity.Poor},
		},
	}}}
}

func TestRouter_SearchGet(t *testing.T) {
	svc := &stubPlanner{
		searchFn: func(ctx context.Context, req planner.Request) (planner.Response, error) {
			require.Equal(t, planner.Request{Query: "London", Limit: 2, Days: 3}, req)
			return londonResponse(), nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/search?query=London&limit=2&days=3", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get(requestIDHeader))

	var got planner.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, londonResponse(), got)

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))
	location := raw["locations"][0]
	require.Equal(t, "London", location["name"])
	require.Contains(t, location, "weatherForecast")
	require.Contains(t, location, "activityRankings")
	require.NotContains(t, location, "degraded")
	day := location["weatherForecast"].([]any)[0].(map[string]any)
	require.Equal(t, "Clear sky", day["weatherDescription"])
}

func TestRouter_SearchPost(t *testing.T) {
	svc := &stubPlanner{
		searchFn: func(ctx context.Context, req planner.Request) (planner.Response, error) {
			require.Equal(t, planner.Request{Query: "Paris"}, req)
			return planner.Response{Locations: []planner.LocationResult{}}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/search", `{"query":"Paris"}`, newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"locations":[]}`, recorder.Body.String())
}

func TestRouter_SearchInvalidParameters(t *testing.T) {
	svc := &stubPlanner{
		searchFn: func(ctx context.Context, req planner.Request) (planner.Response, error) {
			t.Fatal("planner must not be called")
			return planner.Response{}, nil
		},
	}
	server := newRouterUnderTest(t, svc, nil)

	recorder := performRequest(http.MethodGet, "/api/v1/search?query=London&limit=many", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])

	recorder = performRequest(http.MethodPost, "/api/v1/search", `{"query":42}`, server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_SearchValidationError(t *testing.T) {
	svc := &stubPlanner{
		searchFn: func(ctx context.Context, req planner.Request) (planner.Response, error) {
			return planner.Response{}, apperrors.Validation("invalid_days", "days must be between 1 and 16")
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/search?query=London&days=40", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "days must be between 1 and 16")
}

func TestRouter_SearchLookupFailure(t *testing.T) {
	svc := &stubPlanner{
		searchFn: func(ctx context.Context, req planner.Request) (planner.Response, error) {
			cause := apperrors.Transport("request failed", context.DeadlineExceeded)
			return planner.Response{}, apperrors.Wrap("location_lookup_failed", "location lookup failed", cause)
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/search?query=London", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "location_lookup_failed", errBody["error"]["code"])
	require.Equal(t, "unable to look up locations", errBody["error"]["message"])
	require.NotEmpty(t, errBody["error"]["requestId"])
	require.Equal(t, recorder.Header().Get(requestIDHeader), errBody["error"]["requestId"])
}

func TestRouter_SearchUnexpectedError(t *testing.T) {
	svc := &stubPlanner{
		searchFn: func(ctx context.Context, req planner.Request) (planner.Response, error) {
			return planner.Response{}, context.Canceled
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/search?query=London", "", newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Equal(t, "search_failed", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_RequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, &stubPlanner{}, nil).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	counters := metrics.NewCounters()
	counters.Add(metrics.GeocodingRequests, 3)
	counters.Increment(metrics.PlannerDegraded)

	recorder := performRequest(http.MethodGet, "/api/v1/metrics", "", newRouterUnderTest(t, &stubPlanner{}, counters))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"counters":{"api.geocoding.requests":3,"planner.degraded":1}}`, recorder.Body.String())
}

func TestRouter_RateLimit(t *testing.T) {
	handler := NewHandler(&stubPlanner{}, nil, newTestLogger())
	cfg := &config.Config{HTTP: config.HTTPConfig{
		Address:   ":0",
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1},
	}}
	server := NewRouter(cfg, handler)

	recorder := performRequest(http.MethodGet, "/api/v1/search?query=London", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(http.MethodGet, "/api/v1/search?query=London", "", server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])

	recorder = performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestIPRateLimiterRefillsAndForgets(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 1})
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.2"))

	now = now.Add(time.Second)
	require.True(t, limiter.allow("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("10.0.0.3"))
	require.Len(t, limiter.visitors, 1)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, &stubPlanner{}, nil).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	require.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestRouter_ErrorCarriesCallerRequestID(t *testing.T) {
	svc := &stubPlanner{
		searchFn: func(ctx context.Context, req planner.Request) (planner.Response, error) {
			return planner.Response{}, apperrors.Validation("invalid_days", "days must be between 1 and 16")
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?query=Oslo", nil)
	req.Header.Set(requestIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc, nil).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":{"code":"invalid_request","message":"days must be between 1 and 16","requestId":"trace-42"}}`, rec.Body.String())
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc planner.Service, counters *metrics.Counters) *http.Server {
	t.Helper()
	handler := NewHandler(svc, counters, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			CORSOrigins:  []string{"http://localhost:5173"},
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubPlanner struct {
	searchFn func(ctx context.Context, req planner.Request) (planner.Response, error)
}

func (s *stubPlanner) Search(ctx context.Context, req planner.Request) (planner.Response, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, req)
	}
	return planner.Response{Locations: []planner.LocationResult{}}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
