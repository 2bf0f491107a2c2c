package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	// ErrCursorLoop is returned when the source reports more pages without a
	// usable cursor, or hands out a cursor it already returned.
	ErrCursorLoop = errors.New("pagination cursor did not advance")

	// ErrTooManyPages is returned when a drain exceeds Config.MaxPages.
	ErrTooManyPages = errors.New("pagination page limit exceeded")
)

var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notion_pages_fetched_total",
		Help: "Total number of result pages fetched while draining",
	})

	drainDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notion_drain_duration_seconds",
		Help:    "Duration of full pagination drains by outcome",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"outcome"})
)

// Config holds drain configuration.
type Config struct {
	// Timeout per page fetch, retries included. Zero disables the per-page deadline.
	Timeout time.Duration
	// MaxPages aborts drains that never end. Zero means unlimited.
	MaxPages int
	// Name labels log lines, e.g. "posts" or "blocks".
	Name string
}

// DefaultConfig returns the configuration used for Notion endpoints.
func DefaultConfig() Config {
	return Config{
		Timeout:  30 * time.Second,
		MaxPages: 10000,
	}
}

// Page is one response of a paginated endpoint. NextCursor is meaningless
// when HasMore is false.
type Page[T any] struct {
	Items      []T
	HasMore    bool
	NextCursor *string
}

// FetchFunc performs one remote round trip. cursor is nil on the first call only.
type FetchFunc[T any] func(ctx context.Context, cursor *string) (Page[T], error)

// DrainAll fetches every page and returns the concatenated items in page order.
// Any page error aborts the drain and nothing fetched so far is returned.
func DrainAll[T any](ctx context.Context, cfg Config, fetch FetchFunc[T]) ([]T, error) {
	start := time.Now()
	logger := log.With().Str("component", "pagination").Str("drain", cfg.Name).Logger()

	var (
		items  []T
		cursor *string
		pages  int
		seen   = make(map[string]struct{})
	)

	for {
		if cfg.MaxPages > 0 && pages >= cfg.MaxPages {
			drainDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
			return nil, fmt.Errorf("%w: %d pages", ErrTooManyPages, pages)
		}

		page, err := fetchOne(ctx, cfg.Timeout, fetch, cursor)
		if err != nil {
			drainDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
			logger.Warn().
				Err(err).
				Int("page", pages+1).
				Int("items_discarded", len(items)).
				Msg("Page fetch failed - discarding drain")
			return nil, fmt.Errorf("fetch page %d: %w", pages+1, err)
		}

		pages++
		pagesFetchedTotal.Inc()
		items = append(items, page.Items...)

		logger.Debug().
			Int("page", pages).
			Int("page_items", len(page.Items)).
			Int("total_items", len(items)).
			Bool("has_more", page.HasMore).
			Msg("Fetched page")

		if !page.HasMore {
			break
		}

		if page.NextCursor == nil || *page.NextCursor == "" {
			drainDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
			return nil, fmt.Errorf("%w: page %d has more results but no cursor", ErrCursorLoop, pages)
		}
		if _, dup := seen[*page.NextCursor]; dup {
			drainDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
			return nil, fmt.Errorf("%w: cursor %q repeated after page %d", ErrCursorLoop, *page.NextCursor, pages)
		}
		seen[*page.NextCursor] = struct{}{}
		next := *page.NextCursor
		cursor = &next
	}

	if items == nil {
		items = []T{}
	}

	drainDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	logger.Info().
		Int("pages", pages).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Drain complete")

	return items, nil
}

func fetchOne[T any](ctx context.Context, timeout time.Duration, fetch FetchFunc[T], cursor *string) (Page[T], error) {
	if err := ctx.Err(); err != nil {
		return Page[T]{}, err
	}
	if timeout <= 0 {
		return fetch(ctx, cursor)
	}
	pageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fetch(pageCtx, cursor)
}
