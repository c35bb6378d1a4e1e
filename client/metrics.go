package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the client transport.
type Metrics struct {
	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	transportFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer to use the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "miniapp_client",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests issued.",
			},
			[]string{"method", "audience", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "miniapp_client",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "audience"},
		),
		transportFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "miniapp_client",
				Subsystem: "http",
				Name:      "transport_failures_total",
				Help:      "Total number of requests that produced no response.",
			},
			[]string{"method", "audience"},
		),
	}

	reg.MustRegister(m.requests, m.duration, m.transportFailures)
	return m
}

func (m *Metrics) recordRequest(method, audience, status string, d time.Duration) {
	m.requests.WithLabelValues(method, audience, status).Inc()
	m.duration.WithLabelValues(method, audience).Observe(d.Seconds())
}

func (m *Metrics) recordFailure(method, audience string) {
	m.transportFailures.WithLabelValues(method, audience).Inc()
}
