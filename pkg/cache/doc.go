// Package cache provides the two caching layers of the Notion client.
//
// # Process-wide slots
//
// Slot holds a fully drained and normalized collection for the lifetime of
// the process. It is filled on first access, never refreshed and never
// evicted. Concurrent first accesses share one load through a single-flight
// guard, and a failed load leaves the slot empty:
//
//	posts := cache.NewSlot[[]model.Post]("posts")
//	all, err := posts.Get(ctx, func(ctx context.Context) ([]model.Post, error) {
//		return fetchAndNormalize(ctx)
//	})
//
// # Response store
//
// Manager is an optional redis store of Notion responses, keyed by endpoint
// and request body. It lets repeated local builds skip round trips for a
// short TTL. Single objects are stored as raw response bodies. Paginated
// endpoints are stored through LoadAll as one entry per complete drain, so
// a stored result never mixes pages fetched at different times:
//
//	manager := cache.NewManager(redisClient, 5*time.Minute)
//	key := cache.CacheKey{Endpoint: "/v1/databases/abc/query", Body: body}
//	pages, err := cache.LoadAll(ctx, manager, key, func(ctx context.Context) ([]notion.Page, error) {
//		return pagination.DrainAll(ctx, cfg, fetch)
//	})
//
// # Metrics
//
//   - notion_cache_slot_hits_total{slot} - Slot reads served from memory
//   - notion_cache_slot_misses_total{slot} - Slot reads that found it empty
//   - notion_cache_slot_loads_total{slot} - Loader invocations
//   - notion_cache_slot_load_errors_total{slot} - Failed loads
//   - notion_cache_hits_total{layer="redis"} - Response store hits
//   - notion_cache_misses_total - Response store misses
//   - notion_cache_errors_total{operation} - Response store errors
package cache
