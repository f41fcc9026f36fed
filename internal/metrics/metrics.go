// Package metrics holds the Prometheus collectors updated by the pool.
// Promoting the teacher's indirect prometheus/client_golang dependency to
// a direct, actually-registered one (SPEC_FULL.md section 2).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// QueriesTotal counts submitted queries, labeled by outcome.
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "h3cellstore",
		Name:      "queries_total",
		Help:      "Total number of queries submitted to the connection pool, by outcome.",
	}, []string{"outcome"})

	// QueryDuration observes wall-clock time from submit to the
	// background task's completion.
	QueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "h3cellstore",
		Name:      "query_duration_seconds",
		Help:      "Duration of a query from submission to result availability.",
		Buckets:   prometheus.DefBuckets,
	})

	// PoolInflight tracks the number of queries currently submitted but
	// not yet completed by their background task.
	PoolInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "h3cellstore",
		Name:      "pool_inflight",
		Help:      "Number of queries submitted to the pool but not yet completed.",
	})
)

func init() {
	prometheus.MustRegister(QueriesTotal, QueryDuration, PoolInflight)
}
