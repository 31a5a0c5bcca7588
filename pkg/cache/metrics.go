package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of page cache lookups that found a revalidatable entry",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of page cache misses",
	})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_errors_total",
		Help: "Total number of page cache operation errors",
	}, []string{"operation"}) // "get", "set", "delete"

	cacheStoredBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_cache_entry_bytes",
		Help:    "Size of stored page cache entries in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 6),
	})

	// NotModified counts 304 answers served from a cached body.
	NotModified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_304_responses_total",
		Help: "Total number of 304 Not Modified page responses",
	})

	// ConditionalRequestsSent counts requests carrying validators.
	ConditionalRequestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_conditional_requests_total",
		Help: "Total number of conditional page requests sent",
	})
)
