// Package metrics provides Prometheus metrics for the AI gateway: request
// counts, throttling, and provider call latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aigateway"

var (
	// RequestsTotal counts API requests by endpoint and response status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of gateway API requests",
		},
		[]string{"endpoint", "status"},
	)

	// RateLimitedTotal counts throttled requests by caller key class.
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
		[]string{"key_class"},
	)

	// ProviderLatency tracks provider call latency by provider and operation.
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "AI provider call latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	// ProviderErrors counts failed provider calls.
	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total number of failed AI provider calls",
		},
		[]string{"provider", "operation"},
	)

	// InFlight gauges concurrently handled requests.
	InFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_flight_requests",
			Help:      "Number of requests currently being handled",
		},
	)
)

// ObserveProviderCall records one provider call's outcome and latency.
func ObserveProviderCall(provider, operation string, start time.Time, err error) {
	ProviderLatency.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		ProviderErrors.WithLabelValues(provider, operation).Inc()
	}
}
