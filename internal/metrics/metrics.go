// Package metrics holds the Prometheus instruments shared by the service
// layer and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "datalens"

// Metrics groups every instrument the process exports.
type Metrics struct {
	// EngineDuration measures one engine run. Labels: engine, status (ok, error)
	EngineDuration *prometheus.HistogramVec

	// CacheLookups counts result cache lookups. Labels: engine, result (hit, miss)
	CacheLookups *prometheus.CounterVec

	// LoadDuration measures dataset file parsing. Labels: status
	LoadDuration *prometheus.HistogramVec

	// RequestsTotal counts HTTP requests. Labels: route, method, status
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures HTTP latency. Labels: route, method
	RequestDuration *prometheus.HistogramVec
}

// New registers all instruments on reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EngineDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "duration_seconds",
			Help:      "Analysis engine run time in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"engine", "status"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by engine and result",
		}, []string{"engine", "result"}),

		LoadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "duration_seconds",
			Help:      "Dataset load time in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		}, []string{"status"}),

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Status maps an error to the status label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
