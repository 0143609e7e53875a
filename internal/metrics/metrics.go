// Package metrics provides Prometheus metrics for the matching service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockmatch"

var (
	// MatchResultsTotal counts matched line items by terminal status
	MatchResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "results_total",
			Help:      "Line items matched, by resulting status",
		},
		[]string{"status"},
	)

	// MatchRequestDuration tracks how long a whole match request takes
	MatchRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "request_duration_seconds",
			Help:      "Duration of match requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// OracleCallsTotal counts oracle calls by outcome (ok, cached, error, rate_limited)
	OracleCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Semantic oracle calls by outcome",
		},
		[]string{"outcome"},
	)

	// OracleCallDuration tracks upstream oracle latency
	OracleCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "Duration of semantic oracle calls in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
		},
	)

	// ReconciliationsTotal counts stock reconciliations by outcome (committed, rolled_back, invalid)
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "transactions_total",
			Help:      "Stock reconciliation transactions by outcome",
		},
		[]string{"outcome"},
	)

	// ReconciledItemsTotal counts committed line items by action (created, updated)
	ReconciledItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "items_total",
			Help:      "Committed line items by action",
		},
		[]string{"action"},
	)

	// ExtractionsTotal counts extraction-service calls by outcome
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "requests_total",
			Help:      "Document extraction requests by outcome",
		},
		[]string{"outcome"},
	)

	// HTTPRequestsTotal counts inbound requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RequestSlotsInUse tracks occupied match-request slots
	RequestSlotsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "request_slots_in_use",
			Help:      "Match requests currently holding a concurrency slot",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
