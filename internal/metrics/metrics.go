// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so that several servers (e.g. in tests)
// can coexist in one process. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	TokenAttemptsTotal  *prometheus.CounterVec
	SessionRefreshTotal *prometheus.CounterVec
	RateLimitedTotal    *prometheus.CounterVec
}

func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Histogram of HTTP request latency",
			ConstLabels: labels,
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		TokenAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "oauth_token_attempts_total",
			Help:        "Token endpoint attempts by grant type and outcome",
			ConstLabels: labels,
		}, []string{"grant", "outcome"}),
		SessionRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "session_refresh_total",
			Help:        "Session access token refreshes by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		RateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "rate_limited_requests_total",
			Help:        "Requests rejected by the rate limiter",
			ConstLabels: labels,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TokenAttemptsTotal,
		m.SessionRefreshTotal,
		m.RateLimitedTotal,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) TokenAttempt(grant, outcome string) {
	if m == nil {
		return
	}
	m.TokenAttemptsTotal.WithLabelValues(grant, outcome).Inc()
}

func (m *Metrics) SessionRefresh(outcome string) {
	if m == nil {
		return
	}
	m.SessionRefreshTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(route).Inc()
}
