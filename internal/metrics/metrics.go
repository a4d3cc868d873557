package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ghibligroceries",
			Name:      "ai_requests_total",
			Help:      "Total number of AI enhancement requests",
		},
		[]string{"provider", "status"},
	)

	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ghibligroceries",
			Name:      "ai_request_duration_seconds",
			Help:      "AI enhancement request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider"},
	)

	AIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ghibligroceries",
			Name:      "ai_errors_total",
			Help:      "Total AI enhancement failures by kind",
		},
		[]string{"provider", "kind"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ghibligroceries",
			Name:      "search_requests_total",
			Help:      "Search requests by terminal outcome",
		},
		[]string{"outcome"}, // "enhanced" / "fallback" / "rejected" / "unavailable" / "error"
	)

	CatalogCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ghibligroceries",
			Name:      "catalog_cache_total",
			Help:      "Catalog read cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AIErrorsTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(CatalogCacheTotal)
	searchMetricsRegistered = true
}
