package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusConfig configures the scrape registry
type PrometheusConfig struct {
	Namespace   string
	ServiceName string
}

// HTTPMetrics holds the Prometheus instruments served on /metrics. The OTLP
// pipeline in MeterProvider is push based; this registry is the pull side.
type HTTPMetrics struct {
	serviceName string
	namespace   string
	registry    *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	rateLimited      *prometheus.CounterVec
}

// HTTPDurationBuckets are bucket boundaries for HTTP latency (seconds)
var HTTPDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// NewHTTPMetrics creates a registry with Go and process collectors plus the
// HTTP instruments.
func NewHTTPMetrics(cfg PrometheusConfig) *HTTPMetrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "shopledger"
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &HTTPMetrics{
		serviceName: cfg.ServiceName,
		namespace:   cfg.Namespace,
		registry:    registry,
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   HTTPDurationBuckets,
		},
		[]string{"service", "method", "route"},
	)

	m.requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": cfg.ServiceName},
		},
	)

	m.rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"service", "route"},
	)

	registry.MustRegister(m.requestsTotal, m.requestDuration, m.requestsInFlight, m.rateLimited)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying registry
func (m *HTTPMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a finished request
func (m *HTTPMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(m.serviceName, method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(m.serviceName, method, route).Observe(duration.Seconds())
}

// IncInFlight marks a request as started
func (m *HTTPMetrics) IncInFlight() {
	m.requestsInFlight.Inc()
}

// DecInFlight marks a request as finished
func (m *HTTPMetrics) DecInFlight() {
	m.requestsInFlight.Dec()
}

// RecordRateLimited counts a request rejected by the rate limiter
func (m *HTTPMetrics) RecordRateLimited(route string) {
	m.rateLimited.WithLabelValues(m.serviceName, route).Inc()
}

// ObserveBreaker exposes a circuit breaker's state (0 closed, 1 half-open,
// 2 open) as a gauge read at scrape time.
func (m *HTTPMetrics) ObserveBreaker(name string, state func() float64) error {
	return m.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			ConstLabels: prometheus.Labels{
				"service": m.serviceName,
				"breaker": name,
			},
		},
		state,
	))
}
