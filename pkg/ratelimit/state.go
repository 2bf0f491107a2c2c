// Package ratelimit paces requests to the Notion API and honours 429 backoff.
// Notion allows an average of three requests per second per integration and
// answers bursts above that with 429 and a Retry-After header in seconds.
package ratelimit

import (
	"time"
)

const (
	// DefaultRequestsPerSecond is the documented Notion average request rate.
	DefaultRequestsPerSecond = 3

	// DefaultRetryAfter is used when a 429 carries no parsable Retry-After.
	DefaultRetryAfter = 1 * time.Second

	// MaxRetryAfter caps the wait requested by a single 429.
	MaxRetryAfter = 60 * time.Second
)

// RateLimitState is the current backoff state of the integration.
type RateLimitState struct {
	// BlockedUntil is when requests may resume after a 429.
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when this state last changed.
	LastUpdate time.Time `json:"last_update"`

	// RateLimitedCount counts 429 responses seen by this tracker.
	RateLimitedCount int `json:"rate_limited_count"`
}

// IsBlocked reports whether requests must wait for a backoff to elapse.
func (s *RateLimitState) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// TimeUntilReset returns the remaining backoff, or 0 when not blocked.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.BlockedUntil)
	if duration < 0 {
		return 0
	}
	return duration
}
