package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Loader produces the value of a slot. It runs at most once concurrently.
type Loader[T any] func(ctx context.Context) (T, error)

// Slot holds one value for the lifetime of the process. The first successful
// load is kept forever; failed loads store nothing, so the next Get retries
// from scratch. There is no invalidation.
type Slot[T any] struct {
	name   string
	mu     sync.RWMutex
	value  T
	loaded bool
	group  singleflight.Group
}

// NewSlot creates an empty slot. name labels metrics and logs.
func NewSlot[T any](name string) *Slot[T] {
	return &Slot[T]{name: name}
}

// Get returns the cached value, loading it on first use. Concurrent callers
// that find the slot empty share a single in-flight load. The load runs
// detached from the caller's cancellation, so a caller that gives up gets
// ctx.Err() while the others still receive the result.
func (s *Slot[T]) Get(ctx context.Context, load Loader[T]) (T, error) {
	var zero T
	if v, ok := s.peek(); ok {
		SlotHits.WithLabelValues(s.name).Inc()
		return v, nil
	}

	SlotMisses.WithLabelValues(s.name).Inc()

	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(s.name, func() (any, error) {
		// Another flight may have filled the slot between peek and DoChan.
		if v, ok := s.peek(); ok {
			return v, nil
		}

		SlotLoads.WithLabelValues(s.name).Inc()
		v, err := load(loadCtx)
		if err != nil {
			SlotLoadErrors.WithLabelValues(s.name).Inc()
			return nil, err
		}

		s.mu.Lock()
		s.value = v
		s.loaded = true
		s.mu.Unlock()

		log.Debug().Str("component", "cache").Str("slot", s.name).Msg("Slot populated")
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			log.Debug().Str("component", "cache").Str("slot", s.name).Msg("Shared in-flight load")
		}
		return res.Val.(T), nil
	}
}

// Loaded reports whether the slot holds a value.
func (s *Slot[T]) Loaded() bool {
	_, ok := s.peek()
	return ok
}

func (s *Slot[T]) peek() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.loaded
}
