package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RetrievalTotal counts upstream retrieval calls by space and outcome.
	RetrievalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "retrieval_total",
			Help:      "Total upstream retrieval calls",
		},
		[]string{"space", "outcome"},
	)

	// RetrievalDuration observes upstream retrieval latency by space.
	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "omnisearch",
			Name:      "retrieval_duration_seconds",
			Help:      "Upstream retrieval call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"space"},
	)

	// RegistryRefreshTotal counts space registry refresh attempts by outcome.
	RegistryRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "registry_refresh_total",
			Help:      "Space registry refresh attempts",
		},
		[]string{"outcome"},
	)

	// OverviewTotal counts overview generation attempts by outcome.
	OverviewTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "overview_total",
			Help:      "Overview generation attempts",
		},
		[]string{"outcome"},
	)
)

// RegisterRetrievalMetrics registers the retrieval pipeline metrics.
// Called explicitly from the composition root (no init side effects).
func RegisterRetrievalMetrics() {
	prometheus.MustRegister(RetrievalTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RegistryRefreshTotal)
	prometheus.MustRegister(OverviewTotal)
}
