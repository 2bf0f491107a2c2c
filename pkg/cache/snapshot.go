package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
)

// DrainFunc fetches every page of a paginated endpoint.
type DrainFunc[T any] func(ctx context.Context) ([]T, error)

// LoadAll returns the complete result stored under key, or runs drain and
// stores what it returns as a single entry. Pages are never stored one by
// one, so a result always comes from one drain. A nil manager always drains.
// Store errors are logged and do not fail the call.
func LoadAll[T any](ctx context.Context, m *Manager, key CacheKey, drain DrainFunc[T]) ([]T, error) {
	if m == nil {
		return drain(ctx)
	}

	logger := log.With().Str("component", "cache").Str("key", key.String()).Logger()

	entry, err := m.Get(ctx, key)
	switch {
	case err == nil:
		var items []T
		if err := json.Unmarshal(entry.Data, &items); err == nil {
			logger.Debug().Int("items", len(items)).Msg("Drain served from response store")
			return items, nil
		}
		logger.Warn().Msg("Discarding undecodable snapshot")
	case !errors.Is(err, ErrCacheMiss):
		logger.Warn().Err(err).Msg("Snapshot lookup failed")
	}

	items, err := drain(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		logger.Warn().Err(err).Msg("Failed to encode snapshot")
		return items, nil
	}
	if err := m.Set(ctx, key, NewEntry(data, 200, m.TTL())); err != nil {
		logger.Warn().Err(err).Msg("Failed to store snapshot")
	}
	return items, nil
}
