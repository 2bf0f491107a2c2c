package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SlotHits tracks slot reads served from memory
	SlotHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notion_cache_slot_hits_total",
			Help: "Total number of process cache slot hits",
		},
		[]string{"slot"},
	)

	// SlotMisses tracks slot reads that found the slot empty
	SlotMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notion_cache_slot_misses_total",
			Help: "Total number of process cache slot misses",
		},
		[]string{"slot"},
	)

	// SlotLoads tracks loader invocations
	SlotLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notion_cache_slot_loads_total",
			Help: "Total number of process cache slot loads",
		},
		[]string{"slot"},
	)

	// SlotLoadErrors tracks failed loads
	SlotLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notion_cache_slot_load_errors_total",
			Help: "Total number of failed process cache slot loads",
		},
		[]string{"slot"},
	)

	// CacheHits tracks response store hits by layer (redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notion_cache_hits_total",
			Help: "Total number of Notion response cache hits",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks response store misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notion_cache_misses_total",
			Help: "Total number of Notion response cache misses",
		},
	)

	// CacheErrors tracks response store operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notion_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
