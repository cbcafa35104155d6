// Package openmeteo talks to the Open-Meteo geocoding and forecast APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/yanqian/travel-planner/pkg/errors"
)

const (
	DefaultGeocodingBaseURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastBaseURL  = "https://api.open-meteo.com/v1/forecast"
	defaultUserAgent        = "TravelPlanner/1.0"
	maxErrorBody            = 4 << 10
)

// Options configures the upstream client.
type Options struct {
	GeocodingBaseURL string
	ForecastBaseURL  string
	UserAgent        string
	// RequestsPerSecond limits calls per upstream. Zero or less disables limiting.
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// Client fetches places and daily forecasts from Open-Meteo.
type Client struct {
	geocodingURL     string
	forecastURL      string
	userAgent        string
	httpClient       *http.Client
	geocodingLimiter *rate.Limiter
	forecastLimiter  *rate.Limiter
}

// NewClient builds an API client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		geocodingURL:     baseURL(opts.GeocodingBaseURL, DefaultGeocodingBaseURL),
		forecastURL:      baseURL(opts.ForecastBaseURL, DefaultForecastBaseURL),
		userAgent:        firstNonEmpty(opts.UserAgent, defaultUserAgent),
		httpClient:       httpClient,
		geocodingLimiter: newLimiter(opts.RequestsPerSecond, opts.Burst),
		forecastLimiter:  newLimiter(opts.RequestsPerSecond, opts.Burst),
	}
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// get performs one GET and decodes a 2xx body into out. Rejections carrying an
// Open-Meteo error payload are reported as upstream logic failures; everything
// else that prevents a decoded body is a transport failure.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, endpoint string, params url.Values, out any) error {
	if err := limiter.Wait(ctx); err != nil {
		return apperrors.Transport("rate limit wait canceled", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Transport("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if rejectable(resp.StatusCode) {
			if reason, ok := decodeErrorReason(payload); ok {
				return apperrors.UpstreamLogic(fmt.Sprintf("api error: %s", reason), nil)
			}
		}
		return apperrors.Transport(fmt.Sprintf("upstream returned %d", resp.StatusCode), fmt.Errorf("body=%s", strings.TrimSpace(string(payload))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transport("read response", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Transport("decode response", err)
	}
	return nil
}

func rejectable(status int) bool {
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests && status != http.StatusRequestTimeout
}

// apiError accepts both {"error":true,"reason":"..."} and {"error":{"message":"..."}}.
type apiError struct {
	Error  json.RawMessage `json:"error"`
	Reason string          `json:"reason"`
}

func (e apiError) reason() (string, bool) {
	raw := strings.TrimSpace(string(e.Error))
	switch {
	case raw == "" || raw == "null" || raw == "false":
		return "", false
	case raw == "true":
		return firstNonEmpty(e.Reason, "unknown error"), true
	case strings.HasPrefix(raw, "{"):
		var nested struct {
			Message string `json:"message"`
			Reason  string `json:"reason"`
		}
		if err := json.Unmarshal(e.Error, &nested); err != nil {
			return "", false
		}
		return firstNonEmpty(nested.Message, nested.Reason, e.Reason, "unknown error"), true
	case strings.HasPrefix(raw, `"`):
		var msg string
		if err := json.Unmarshal(e.Error, &msg); err != nil {
			return "", false
		}
		return firstNonEmpty(msg, e.Reason, "unknown error"), true
	default:
		return "", false
	}
}

func decodeErrorReason(payload []byte) (string, bool) {
	var e apiError
	if err := json.Unmarshal(payload, &e); err != nil {
		return "", false
	}
	return e.reason()
}

func baseURL(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = fallback
	}
	return strings.TrimRight(trimmed, "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
