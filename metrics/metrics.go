// Package metrics exposes the proxy's Prometheus series and a Sink that
// feeds them from published execution events, using package-level
// CounterVec/HistogramVec variables registered once via sync.Once.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExecutionTotal counts every unit execution terminal event by sql
	// type and outcome.
	ExecutionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_execution_total",
			Help: "Total number of statement unit executions",
		},
		[]string{"sql_type", "phase"},
	)

	// ExecutionDuration tracks how long each Execute call takes end to
	// end, labeled by sql type.
	ExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sphere_execution_duration_seconds",
			Help:    "Execute call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sql_type"},
	)

	// BackendConnectionsTotal counts handshakes completed per data
	// source.
	BackendConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_backend_connections_total",
			Help: "Total backend connections handshaked",
		},
		[]string{"data_source"},
	)

	// ProtocolErrorsTotal counts fatal per-connection protocol failures
	// by the operation that detected them.
	ProtocolErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_protocol_errors_total",
			Help: "Total fatal protocol errors by operation",
		},
		[]string{"op"},
	)

	// AuthFailuresTotal counts ERR responses received during
	// authentication.
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_auth_failures_total",
			Help: "Total authentication failures",
		},
		[]string{"data_source"},
	)

	once sync.Once
)

// Init registers every series with the default Prometheus registry.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(ExecutionTotal)
		prometheus.MustRegister(ExecutionDuration)
		prometheus.MustRegister(BackendConnectionsTotal)
		prometheus.MustRegister(ProtocolErrorsTotal)
		prometheus.MustRegister(AuthFailuresTotal)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
