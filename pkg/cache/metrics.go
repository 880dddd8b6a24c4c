package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks reads served from fresh cached data
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "couchers_query_cache_hits_total",
			Help: "Total number of query cache hits",
		},
	)

	// CacheMisses tracks reads that had to fetch
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "couchers_query_cache_misses_total",
			Help: "Total number of query cache misses",
		},
		[]string{"reason"}, // "empty", "stale", "invalidated"
	)

	// Fetches tracks completed fetch functions by result
	Fetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "couchers_query_fetches_total",
			Help: "Total number of query fetches by result",
		},
		[]string{"result"}, // "success", "error", "cancelled"
	)

	// Invalidations tracks entries marked stale by Invalidate
	Invalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "couchers_query_invalidations_total",
			Help: "Total number of query cache entries invalidated",
		},
	)

	// Rollbacks tracks optimistic updates reverted after a failed mutation
	Rollbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "couchers_query_rollbacks_total",
			Help: "Total number of optimistic updates rolled back",
		},
	)

	// Entries tracks the number of cached queries
	Entries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "couchers_query_cache_entries",
			Help: "Current number of query cache entries",
		},
	)

	// PersistErrors tracks snapshot persistence failures
	PersistErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "couchers_query_persist_errors_total",
			Help: "Total number of query cache persistence errors",
		},
		[]string{"operation"}, // "persist", "restore"
	)
)
