// Package metrics exposes the Prometheus metrics of catalog-selector.
// All metrics are defined in their respective packages (catalog, cache,
// ratelimit, selection, coordinator) to maintain modularity and avoid
// circular dependencies.
//
// This package provides the exposition handler and documentation for all
// available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by catalog-selector.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the registered metrics for exposition.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - catalog_rate_limit_remaining (Gauge): Requests remaining in the upstream window
//   - catalog_rate_limit_blocks_total (Counter): Requests blocked at the critical threshold
//   - catalog_rate_limit_throttles_total (Counter): Requests delayed at the warning threshold
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total (Counter): Cache hits
//   - catalog_cache_misses_total (Counter): Cache misses
//   - catalog_cache_entry_bytes (Histogram): Size of stored entries
//   - catalog_304_responses_total (Counter): 304 Not Modified responses
//   - catalog_conditional_requests_total (Counter): Requests sent with validators
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/catalog):
//   - catalog_requests_total{status} (Counter): Page requests by HTTP status
//   - catalog_request_duration_seconds (Histogram): Page request duration
//   - catalog_errors_total{class} (Counter): Fetch errors by class
//     (client, server, rate_limit, network, malformed)
//
// Selection Metrics (pkg/selection):
//   - selection_size (Gauge): Ids currently selected
//   - selector_runs_total{reason} (Counter): Select-first-N runs by stop reason
//   - selector_pages_fetched (Histogram): Pages fetched per run
//   - selector_ids_added_total (Counter): Ids added by select-first-N
//
// Coordinator Metrics (pkg/coordinator):
//   - coordinator_page_loads_total{result} (Counter): Page loads (success, failure, stale)
//
// Example Prometheus Queries:
//
//   # Fetch error rate
//   rate(catalog_errors_total[5m])
//
//   # Select-first-N runs cut short by failures
//   rate(selector_runs_total{reason="fetch_failed"}[1h])
//
//   # P95 page latency
//   histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
//
//   # Revalidation hit rate
//   rate(catalog_304_responses_total[5m]) / rate(catalog_conditional_requests_total[5m])
