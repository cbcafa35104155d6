package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/travel-planner/internal/domain/weather"
)

// ValkeyStore shares cached payloads across instances through a Valkey-compatible database.
type ValkeyStore[V any] struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore[V any](client valkey.Client, prefix string) *ValkeyStore[V] {
	if prefix == "" {
		prefix = "travel"
	}
	return &ValkeyStore[V]{client: client, prefix: prefix}
}

func (s *ValkeyStore[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	cmd := s.client.B().Get().Key(s.key(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return zero, false, nil
		}
		return zero, false, err
	}
	value, err := decodeEntry[V](payload)
	if err != nil {
		return zero, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes value with a whole-second expiry. A non-positive ttl is ignored.
func (s *ValkeyStore[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	payload, err := encodeEntry(value)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.key(key)).Value(payload).Ex(expiry(ttl)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore[V]) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func encodeEntry[V any](value V) (string, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func decodeEntry[V any](payload string) (V, error) {
	var value V
	err := json.Unmarshal([]byte(payload), &value)
	return value, err
}

// expiry rounds sub-second ttls up, since EX only takes whole seconds.
func expiry(ttl time.Duration) time.Duration {
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

var (
	_ weather.Cache[[]weather.Location]      = (*ValkeyStore[[]weather.Location])(nil)
	_ weather.Cache[[]weather.DailyForecast] = (*ValkeyStore[[]weather.DailyForecast])(nil)
)
