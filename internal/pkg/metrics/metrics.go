package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ResolutionsTotal counts completed resolutions by network and source type.
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ens_resolutions_total",
		Help: "Number of name resolutions, labeled by network and resolution type.",
	}, []string{"network", "type"})

	// ResolutionFailures counts resolutions that exhausted every source.
	ResolutionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ens_resolution_failures_total",
		Help: "Number of resolutions that yielded no address.",
	}, []string{"network"})

	// ResolutionCacheHits counts resolution cache hits.
	ResolutionCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ens_resolution_cache_hits_total",
		Help: "Number of resolutions served from the cache.",
	})

	// TransactionsTotal counts submitted write transactions by operation and outcome.
	TransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ens_transactions_total",
		Help: "Number of state-changing operations, labeled by operation and outcome.",
	}, []string{"operation", "outcome"})
)

// MustRegisterMetrics registers all application metrics with the default
// registry. Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		ResolutionsTotal,
		ResolutionFailures,
		ResolutionCacheHits,
		TransactionsTotal,
	)
}
