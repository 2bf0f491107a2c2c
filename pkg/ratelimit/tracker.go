package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for rate limit tracking.
var (
	notionRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notion_rate_limited_total",
		Help: "Total number of 429 responses received from Notion",
	})

	notionRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "notion_rate_limit_wait_seconds",
		Help:    "Time requests spent waiting for the rate limiter",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

// Tracker gates outgoing requests. It combines a token bucket for steady
// pacing with the backoff window announced by 429 responses.
type Tracker struct {
	mu      sync.Mutex
	state   RateLimitState
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewTracker creates a tracker allowing requestsPerSecond on average.
// A non-positive rate disables pacing; 429 backoff still applies.
func NewTracker(requestsPerSecond float64, logger zerolog.Logger) *Tracker {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Tracker{
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// GetState returns a copy of the current state.
func (t *Tracker) GetState() RateLimitState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromResponse records a 429 and its Retry-After. Other statuses are ignored.
func (t *Tracker) UpdateFromResponse(statusCode int, headers http.Header) {
	if statusCode != http.StatusTooManyRequests {
		return
	}

	wait := ParseRetryAfter(headers)
	now := time.Now()

	t.mu.Lock()
	until := now.Add(wait)
	if until.After(t.state.BlockedUntil) {
		t.state.BlockedUntil = until
	}
	t.state.LastUpdate = now
	t.state.RateLimitedCount++
	count := t.state.RateLimitedCount
	t.mu.Unlock()

	notionRateLimitedTotal.Inc()
	t.logger.Warn().
		Dur("retry_after", wait).
		Int("rate_limited_count", count).
		Msg("Notion rate limit hit - backing off")
}

// Wait blocks until a request may be sent or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	start := time.Now()
	defer func() {
		notionRateLimitWaitSeconds.Observe(time.Since(start).Seconds())
	}()

	t.mu.Lock()
	backoff := t.state.TimeUntilReset()
	t.mu.Unlock()

	if backoff > 0 {
		t.logger.Debug().Dur("wait", backoff).Msg("Waiting for rate limit backoff")
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return t.limiter.Wait(ctx)
}

// ParseRetryAfter reads Retry-After as delta seconds or an HTTP date.
// Missing or invalid values yield DefaultRetryAfter; the result is capped at MaxRetryAfter.
func ParseRetryAfter(headers http.Header) time.Duration {
	value := headers.Get("Retry-After")
	if value == "" {
		return DefaultRetryAfter
	}

	var wait time.Duration
	if seconds, err := strconv.Atoi(value); err == nil {
		wait = time.Duration(seconds) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		wait = time.Until(at)
	} else {
		return DefaultRetryAfter
	}

	if wait <= 0 {
		return DefaultRetryAfter
	}
	if wait > MaxRetryAfter {
		return MaxRetryAfter
	}
	return wait
}
