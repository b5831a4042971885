package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors recorded by the client.
// A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the client collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fogswap_client_requests_total",
				Help: "Total number of Fogswap API requests by method, endpoint and HTTP status",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fogswap_client_request_duration_seconds",
				Help:    "Duration of Fogswap API requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
	}
}

// RecordRequest records one round trip. statusCode 0 means the transport failed.
func (m *Metrics) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}

	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}

	m.requestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.requestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
