package operations

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	operationsTotal *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	sessionState    prometheus.Gauge
}

func NewMetrics() *Metrics {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_session_operations_total",
		Help: "Workflow runs by operation and result",
	}, []string{"operation", "result"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "token_session_operation_duration_seconds",
		Help:    "Workflow wall time",
		Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
	}, []string{"operation"})

	state := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "token_session_state",
		Help: "Session state: 0 disconnected, 1 connected, 2 address resolved",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(ops, duration, state)

	return &Metrics{
		registry:        r,
		operationsTotal: ops,
		durationSeconds: duration,
		sessionState:    state,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(out Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !out.Success {
		result = string(out.Kind)
	}
	m.operationsTotal.WithLabelValues(out.Operation, result).Inc()
	m.durationSeconds.WithLabelValues(out.Operation).Observe(elapsed.Seconds())
}

func (m *Metrics) setState(state int) {
	if m == nil {
		return
	}
	m.sessionState.Set(float64(state))
}
