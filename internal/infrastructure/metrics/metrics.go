package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider-sync Metrics
var (
	// Cache read counters
	CacheReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "provider_sync",
			Name:      "cache_reads_total",
			Help:      "Total cache reads by entry kind and outcome (hit/miss)",
		},
		[]string{"kind", "outcome"},
	)

	// Refreshes triggered by invalidation
	CacheRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "provider_sync",
			Name:      "cache_refreshes_total",
			Help:      "Total cache refreshes triggered by invalidation",
		},
		[]string{"kind"},
	)

	// Fetch failures
	CacheFetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "provider_sync",
			Name:      "cache_fetch_errors_total",
			Help:      "Total failed cache fetches",
		},
		[]string{"kind"},
	)

	// Fetch duration histogram
	CacheFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "provider_sync",
			Name:      "cache_fetch_duration_seconds",
			Help:      "Cache fetch duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"kind"},
	)

	// Mutation counters
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "provider_sync",
			Name:      "mutations_total",
			Help:      "Total provider mutations by kind and status",
		},
		[]string{"kind", "status"},
	)

	// Mutation duration histogram
	MutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "provider_sync",
			Name:      "mutation_duration_seconds",
			Help:      "Provider mutation duration in seconds, cache resync included",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"kind", "status"},
	)

	// Remote gateway calls
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "provider_sync",
			Name:      "gateway_requests_total",
			Help:      "Total remote provider service requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	// Providers with an in-flight mutation
	LoadingProviders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jan",
			Subsystem: "provider_sync",
			Name:      "loading_providers",
			Help:      "Number of providers with an in-flight mutation",
		},
	)
)

// RecordCacheRead records a cache read with its hit/miss outcome
func RecordCacheRead(kind string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheReadsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordCacheRefresh records an invalidation-triggered refresh
func RecordCacheRefresh(kind string) {
	CacheRefreshesTotal.WithLabelValues(kind).Inc()
}

// RecordCacheFetch records the duration of a completed fetch, or the failure
func RecordCacheFetch(kind string, durationSec float64, failed bool) {
	if failed {
		CacheFetchErrorsTotal.WithLabelValues(kind).Inc()
		return
	}
	CacheFetchDuration.WithLabelValues(kind).Observe(durationSec)
}

// RecordMutation records a provider mutation with its outcome
func RecordMutation(kind, status string, durationSec float64) {
	MutationsTotal.WithLabelValues(kind, status).Inc()
	MutationDuration.WithLabelValues(kind, status).Observe(durationSec)
}

// RecordGatewayRequest records a remote provider service call
func RecordGatewayRequest(operation, status string) {
	if status == "" {
		status = "unknown"
	}
	GatewayRequestsTotal.WithLabelValues(operation, status).Inc()
}

// SetLoadingProviders sets the in-flight mutation gauge
func SetLoadingProviders(n int) {
	LoadingProviders.Set(float64(n))
}
