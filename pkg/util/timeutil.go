package util

import "time"

// Clock returns the current time. Components accept one so tests can pin time.
type Clock func() time.Time

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}
