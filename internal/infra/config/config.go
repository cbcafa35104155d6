package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Planner  PlannerConfig  `yaml:"planner"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// UpstreamConfig describes how Open-Meteo is reached.
type UpstreamConfig struct {
	GeocodingBaseURL  string        `yaml:"geocodingBaseUrl"`
	ForecastBaseURL   string        `yaml:"forecastBaseUrl"`
	UserAgent         string        `yaml:"userAgent"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"maxRetries"`
	BaseBackoff       time.Duration `yaml:"baseBackoff"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
}

// MaxUpstreamRetries bounds upstream.maxRetries.
const MaxUpstreamRetries = 10

// RetryBudget is the longest one upstream call can take: every attempt timing
// out plus every backoff wait in between.
func (u UpstreamConfig) RetryBudget() time.Duration {
	budget := time.Duration(u.MaxRetries+1) * u.Timeout
	backoff := u.BaseBackoff
	for i := 0; i < u.MaxRetries; i++ {
		budget += backoff
		backoff *= 2
	}
	return budget
}

// CacheConfig sets freshness windows and the optional shared tier.
type CacheConfig struct {
	GeocodingTTL time.Duration `yaml:"geocodingTtl"`
	ForecastTTL  time.Duration `yaml:"forecastTtl"`
	Valkey       ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PlannerConfig holds request defaults and fan-out limits.
type PlannerConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
	DefaultDays  int `yaml:"defaultDays"`
	Concurrency  int `yaml:"concurrency"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	// API_TIMEOUT is plain milliseconds; UPSTREAM_TIMEOUT takes a Go duration and wins.
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Upstream.Timeout = time.Duration(parsed) * time.Millisecond
		}
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Upstream.Timeout = parsed
		}
	}
	if v := os.Getenv("UPSTREAM_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Upstream.MaxRetries = parsed
		}
	}
	if v := os.Getenv("UPSTREAM_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Upstream.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("UPSTREAM_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Upstream.RequestsPerSecond = parsed
		}
	}
	if v := os.Getenv("GEOCODING_BASE_URL"); v != "" {
		cfg.Upstream.GeocodingBaseURL = v
	}
	if v := os.Getenv("FORECAST_BASE_URL"); v != "" {
		cfg.Upstream.ForecastBaseURL = v
	}
	// WEATHER_CACHE_TTL is plain seconds.
	if v := os.Getenv("WEATHER_CACHE_TTL"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Cache.ForecastTTL = time.Duration(parsed) * time.Second
		}
	}
	if v := os.Getenv("GEOCODING_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.GeocodingTTL = parsed
		}
	}
	if v := os.Getenv("CACHE_VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("PLANNER_CONCURRENCY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Planner.Concurrency = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			CORSOrigins:  []string{"http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Upstream: UpstreamConfig{
			GeocodingBaseURL:  "https://geocoding-api.open-meteo.com/v1/search",
			ForecastBaseURL:   "https://api.open-meteo.com/v1/forecast",
			UserAgent:         "TravelPlanner/1.0",
			Timeout:           10 * time.Second,
			MaxRetries:        2,
			BaseBackoff:       time.Second,
			RequestsPerSecond: 10,
			Burst:             10,
		},
		Cache: CacheConfig{
			GeocodingTTL: 24 * time.Hour,
			ForecastTTL:  time.Hour,
			Valkey: ValkeyConfig{
				Prefix: "travel",
			},
		},
		Planner: PlannerConfig{
			DefaultLimit: 10,
			DefaultDays:  7,
			Concurrency:  8,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.Upstream.GeocodingBaseURL) == "" {
		return errors.New("upstream.geocodingBaseUrl cannot be empty")
	}
	if strings.TrimSpace(c.Upstream.ForecastBaseURL) == "" {
		return errors.New("upstream.forecastBaseUrl cannot be empty")
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be positive")
	}
	if c.Upstream.MaxRetries < 0 || c.Upstream.MaxRetries > MaxUpstreamRetries {
		return fmt.Errorf("upstream.maxRetries must be between 0 and %d", MaxUpstreamRetries)
	}
	if c.Upstream.BaseBackoff < 0 {
		return errors.New("upstream.baseBackoff cannot be negative")
	}
	// a search makes one geocoding call then forecast calls in parallel
	if pipeline := 2 * c.Upstream.RetryBudget(); c.HTTP.WriteTimeout > 0 && c.HTTP.WriteTimeout <= pipeline {
		return fmt.Errorf("http.writeTimeout %s must exceed the worst-case search time %s", c.HTTP.WriteTimeout, pipeline)
	}
	if c.Upstream.RequestsPerSecond < 0 {
		return errors.New("upstream.requestsPerSecond cannot be negative")
	}
	if c.Cache.GeocodingTTL < 0 || c.Cache.ForecastTTL < 0 {
		return errors.New("cache ttl cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Planner.DefaultLimit < 1 || c.Planner.DefaultLimit > 100 {
		return errors.New("planner.defaultLimit must be between 1 and 100")
	}
	if c.Planner.DefaultDays < 1 || c.Planner.DefaultDays > 16 {
		return errors.New("planner.defaultDays must be between 1 and 16")
	}
	if c.Planner.Concurrency < 0 {
		return errors.New("planner.concurrency cannot be negative")
	}
	return nil
}
