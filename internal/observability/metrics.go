package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	Registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	tokensIssued      *prometheus.CounterVec
	tokensConsumed    *prometheus.CounterVec
	tokenValidations  *prometheus.CounterVec
	authFailuresTotal *prometheus.CounterVec
}

// NewMetrics builds and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Request errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokens_issued_total",
			Help: "Single-use tokens issued, by kind.",
		}, []string{"kind"}),
		tokensConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokens_consumed_total",
			Help: "Single-use tokens consumed, by kind.",
		}, []string{"kind"}),
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "token_validation_failures_total",
			Help: "Failed token validations, by kind and reason.",
		}, []string{"kind", "reason"}),
		authFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Authentication and authorization rejections, by stage.",
		}, []string{"stage"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.requestDuration,
		m.tokensIssued,
		m.tokensConsumed,
		m.tokenValidations,
		m.authFailuresTotal,
	)
	return m
}

// RecordRequest counts a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(durationSeconds)
}

// RecordError counts a request that ended in a domain error.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(path, method, code).Inc()
}

// RecordTokenIssued counts an issued token.
func (m *Metrics) RecordTokenIssued(kind string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(kind).Inc()
}

// RecordTokenConsumed counts a consumed token.
func (m *Metrics) RecordTokenConsumed(kind string) {
	if m == nil {
		return
	}
	m.tokensConsumed.WithLabelValues(kind).Inc()
}

// RecordTokenValidationFailure counts a failed validation.
func (m *Metrics) RecordTokenValidationFailure(kind, reason string) {
	if m == nil {
		return
	}
	m.tokenValidations.WithLabelValues(kind, reason).Inc()
}

// RecordAuthFailure counts a guard rejection.
func (m *Metrics) RecordAuthFailure(stage string) {
	if m == nil {
		return
	}
	m.authFailuresTotal.WithLabelValues(stage).Inc()
}
