package cache

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "servicecore"

// Metrics counts cache outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	backendErrors *prometheus.CounterVec
}

// NewMetrics creates the cache collectors and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cached repository reads by entity, operation and result (hit or miss).",
		}, []string{"entity", "op", "result"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache keys removed after successful writes.",
		}, []string{"entity"}),
		backendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "backend_errors_total",
			Help:      "Cache backend failures absorbed by the client.",
		}, []string{"op"}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.invalidations, m.backendErrors)
	}
	return m
}

func (m *Metrics) Hit(entity, op string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(entity, op, "hit").Inc()
}

func (m *Metrics) Miss(entity, op string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(entity, op, "miss").Inc()
}

func (m *Metrics) Invalidated(entity string, keys int) {
	if m == nil || keys <= 0 {
		return
	}
	m.invalidations.WithLabelValues(entity).Add(float64(keys))
}

func (m *Metrics) BackendError(op string) {
	if m == nil {
		return
	}
	m.backendErrors.WithLabelValues(op).Inc()
}

// RequestsCounter exposes the request counter for one label set, mostly for
// tests.
func (m *Metrics) RequestsCounter(entity, op, result string) prometheus.Counter {
	return m.requests.WithLabelValues(entity, op, result)
}

// InvalidationsCounter exposes the invalidation counter of entity.
func (m *Metrics) InvalidationsCounter(entity string) prometheus.Counter {
	return m.invalidations.WithLabelValues(entity)
}

// BackendErrorsCounter exposes the backend failure counter of op.
func (m *Metrics) BackendErrorsCounter(op string) prometheus.Counter {
	return m.backendErrors.WithLabelValues(op)
}
