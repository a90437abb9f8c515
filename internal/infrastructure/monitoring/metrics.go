package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics for the HTTP surface and the rate limiter.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
	RateLimitRejected  *prometheus.CounterVec
	RateLimitStoreErrs prometheus.Counter
}

// NewMetrics creates and registers the Prometheus metrics against the given
// registerer. Passing a fresh registry keeps tests isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analytics_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		RateLimitRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_rate_limit_rejected_total",
				Help: "Total number of requests rejected by the rate limiter.",
			},
			[]string{"route"},
		),
		RateLimitStoreErrs: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "analytics_rate_limit_store_errors_total",
				Help: "Total number of counter store failures absorbed by the fail-open policy.",
			},
		),
	}
}

// RecordRequest records metrics for a completed HTTP request.
func (m *Metrics) RecordRequest(route, method, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordRateLimitRejection records a 429 rejection for a route.
func (m *Metrics) RecordRateLimitRejection(route string) {
	m.RateLimitRejected.WithLabelValues(route).Inc()
}

// RecordStoreError records a counter store failure absorbed by fail-open.
func (m *Metrics) RecordStoreError() {
	m.RateLimitStoreErrs.Inc()
}
