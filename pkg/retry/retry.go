// Package retry runs idempotent upstream calls under a per-attempt timeout
// with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/yanqian/travel-planner/pkg/errors"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 2
	DefaultBaseBackoff = time.Second
)

// Policy bounds a single logical call.
type Policy struct {
	// Timeout applies to each attempt separately.
	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// BaseBackoff is doubled after every failed attempt.
	BaseBackoff time.Duration
	// OnRetry is invoked before each backoff wait. attempt is 1-based and
	// names the attempt about to run.
	OnRetry func(attempt int, delay time.Duration, err error)
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns the design defaults: 10s per attempt, 2 retries, 1s base backoff.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		BaseBackoff: DefaultBaseBackoff,
	}
}

// MaxBackoff caps a single wait once doubling would overflow or grow absurd.
const MaxBackoff = time.Hour

// Backoff returns the wait after the failed attempt with the given 0-based index.
func (p Policy) Backoff(attemptIndex int) time.Duration {
	if p.BaseBackoff <= 0 || attemptIndex < 0 {
		return 0
	}
	delay := p.BaseBackoff
	for i := 0; i < attemptIndex; i++ {
		if delay >= MaxBackoff/2 {
			return MaxBackoff
		}
		delay *= 2
	}
	return min(delay, MaxBackoff)
}

func (p Policy) normalized() Policy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	return p
}

// ExhaustedError is returned once every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retryable reports whether another attempt could succeed. Validation and
// upstream rejections are final; everything else is treated as a failure to
// reach or parse the upstream.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindUpstreamLogic:
		return false
	}
	return true
}

// Do executes op until it succeeds, fails permanently, or the retry budget is spent.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	p := policy.normalized()
	attempts := p.MaxRetries + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.Backoff(attempt - 1)
			if p.OnRetry != nil {
				p.OnRetry(attempt+1, delay, lastErr)
			}
			if err := p.Sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		result, err := runAttempt(ctx, p.Timeout, op)
		if err == nil {
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		lastErr = err
		if !Retryable(err) {
			return zero, err
		}
	}
	return zero, &ExhaustedError{Attempts: attempts, Err: lastErr}
}

type outcome[T any] struct {
	value T
	err   error
}

// runAttempt returns as soon as the attempt deadline passes even if op does
// not observe its context.
func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		value, err := op(attemptCtx)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return res.value, apperrors.Transport(fmt.Sprintf("attempt timed out after %s", timeout), res.err)
		}
		return res.value, res.err
	case <-attemptCtx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, apperrors.Transport(fmt.Sprintf("attempt timed out after %s", timeout), attemptCtx.Err())
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
