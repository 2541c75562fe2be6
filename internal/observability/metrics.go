// Package observability holds the Prometheus instrumentation for the
// collector.  Metrics are exposed by the REST controller at /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for station frame processing.
type Metrics struct {
	FramesReceived *prometheus.CounterVec // labels: station
	FramesInvalid  *prometheus.CounterVec // labels: station
	CommTimeouts   *prometheus.CounterVec // labels: station
	ReadingsStored *prometheus.CounterVec // labels: backend
}

func newMetrics() *Metrics {
	return &Metrics{
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "misolweather",
			Name:      "frames_received_total",
			Help:      "Total frames received from the station, valid or not.",
		}, []string{"station"}),
		FramesInvalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "misolweather",
			Name:      "frames_invalid_total",
			Help:      "Total byte bursts that failed frame validation.",
		}, []string{"station"}),
		CommTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "misolweather",
			Name:      "comm_timeouts_total",
			Help:      "Total communication timeouts that invalidated readings.",
		}, []string{"station"}),
		ReadingsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "misolweather",
			Name:      "readings_stored_total",
			Help:      "Total readings handed to each storage backend.",
		}, []string{"backend"}),
	}
}

// NewMetrics creates the collector metrics and registers them with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FramesReceived,
		m.FramesInvalid,
		m.CommTimeouts,
		m.ReadingsStored,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default
// registry, avoiding "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
