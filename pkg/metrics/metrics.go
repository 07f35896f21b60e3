// Package metrics provides Prometheus metrics for the connector.
//
// Metrics are optional: a nil *ConnectorMetrics is a valid no-op
// receiver, so the connector runs with zero overhead when collection is
// disabled.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global registry. Safe to call more than
// once; later calls are ignored. If never called, GetRegistry returns nil
// and constructors hand out no-op instances.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global registry, or nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// ConnectorMetrics tracks per-command request counts and latencies.
type ConnectorMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewConnectorMetrics creates command metrics bound to the global
// registry, or nil (no-op) when the registry is uninitialized.
func NewConnectorMetrics() *ConnectorMetrics {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}

	factory := promauto.With(reg)
	return &ConnectorMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elfin",
			Subsystem: "connector",
			Name:      "requests_total",
			Help:      "Connector commands processed, by command and outcome.",
		}, []string{"cmd", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "elfin",
			Subsystem: "connector",
			Name:      "request_duration_seconds",
			Help:      "Connector command latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cmd"}),
	}
}

// Observe records one completed command. Nil receivers no-op.
func (m *ConnectorMetrics) Observe(cmd string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.requests.WithLabelValues(cmd, status).Inc()
	m.duration.WithLabelValues(cmd).Observe(elapsed.Seconds())
}
