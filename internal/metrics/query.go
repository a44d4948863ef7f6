package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query engine Prometheus metrics.
var (
	DeckQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slidedex",
			Name:      "deck_queries_total",
			Help:      "Total number of deck queries",
		},
		[]string{"outcome"}, // "ok" / "rejected" / "error"
	)

	RecordCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slidedex",
			Name:      "record_cache_total",
			Help:      "Query engine record cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(DeckQueriesTotal)
	prometheus.MustRegister(RecordCacheTotal)
	queryMetricsRegistered = true
}
