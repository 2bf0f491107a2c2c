// Package metrics exposes the Prometheus registry used by the notion-blog packages.
// Metrics are defined next to the code that records them (client, cache,
// ratelimit, pagination) and registered via promauto on the default registerer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all package metrics are added to.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - notion_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status ("cached" for redis hits)
//   - notion_request_duration_seconds{endpoint} (Histogram): logical request duration, retries included
//   - notion_errors_total{class} (Counter): errors by class (client, server, rate_limit, network, malformed)
//
// Retry Metrics (pkg/client):
//   - notion_retries_total{error_class} (Counter)
//   - notion_retry_backoff_seconds{error_class} (Histogram)
//   - notion_retry_exhausted_total{error_class} (Counter)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - notion_rate_limited_total (Counter): 429 responses
//   - notion_rate_limit_wait_seconds (Histogram): time spent in the limiter
//
// Pagination Metrics (pkg/pagination):
//   - notion_pages_fetched_total (Counter)
//   - notion_drain_duration_seconds{outcome} (Histogram): outcome is ok or error
//
// Cache Metrics (pkg/cache):
//   - notion_cache_slot_hits_total{slot}, notion_cache_slot_misses_total{slot} (Counter)
//   - notion_cache_slot_loads_total{slot}, notion_cache_slot_load_errors_total{slot} (Counter)
//   - notion_cache_hits_total{layer="redis"}, notion_cache_misses_total (Counter)
//   - notion_cache_errors_total{operation} (Counter)
//
// Example Prometheus Queries:
//
//   # Response cache hit rate
//   sum(rate(notion_cache_hits_total[5m])) /
//   (sum(rate(notion_cache_hits_total[5m])) + sum(rate(notion_cache_misses_total[5m])))
//
//   # Failed drains
//   notion_drain_duration_seconds_count{outcome="error"}
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(notion_request_duration_seconds_bucket[5m]))
