// Package metrics exposes the daemon's Prometheus collectors. Nothing here
// feeds back into container lifecycle control flow: it is pure
// observability, safe to read from any goroutine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ContainersTotal tracks how many containers the registry currently
	// holds, broken down by status.
	ContainersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cruise_containers_total",
			Help: "Total number of containers by status",
		},
		[]string{"status"},
	)

	// OperationDuration tracks how long lifecycle operations take.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cruise_operation_duration_seconds",
			Help:    "Duration of container lifecycle operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RuntimeInvocationsTotal tracks runtime adapter calls by method and outcome.
	RuntimeInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cruise_runtime_invocations_total",
			Help: "Total number of runtime binary invocations by method and outcome",
		},
		[]string{"method", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(ContainersTotal, OperationDuration, RuntimeInvocationsTotal)
}

// Handler returns the HTTP handler serving Prometheus's exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
