// Package metrics holds the Prometheus collectors of the service. They are
// registered on the default registry and exposed by Handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "costs"

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "route", "status"},
	)

	costsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "added_total",
			Help:      "Costs persisted, by category.",
		},
		[]string{"category"},
	)

	reportsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "built_total",
			Help:      "Monthly reports served, by outcome.",
		},
		[]string{"outcome"},
	)

	reportCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "cache_lookups_total",
		},
		[]string{"result"},
	)

	reconcileFixed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "totals_fixed_total",
			Help:      "User totals overwritten because they drifted from the record set.",
		},
	)
)

// ObserveRequest records the latency of a finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestDuration.
		WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

func CostAdded(category string) {
	costsAdded.WithLabelValues(category).Inc()
}

// ReportBuilt counts a report request; ok is false when building failed.
func ReportBuilt(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	reportsBuilt.WithLabelValues(outcome).Inc()
}

func ReportCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	reportCache.WithLabelValues(result).Inc()
}

func TotalsFixed(n int) {
	reconcileFixed.Add(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
