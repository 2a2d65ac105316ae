// Package metrics holds the Prometheus collectors of the audit trail and the
// notification fan-out.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civicdesk"

// Outcome labels of audit_writes_total.
const (
	OutcomeRecorded = "recorded"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomePanicked = "panicked"
)

// Metrics holds Prometheus metrics for the audit recorder and the realtime hub.
type Metrics struct {
	AuditWrites        *prometheus.CounterVec
	AuditWriteDuration prometheus.Histogram
	AuditInFlight      prometheus.Gauge
	AuditPurged        prometheus.Counter

	Connections          prometheus.Gauge
	NotificationsEmitted *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuditWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_writes_total",
			Help:      "Total number of asynchronous audit writes by outcome",
		}, []string{"outcome"}),
		AuditWriteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audit_write_duration_seconds",
			Help:      "Time taken to resolve the actor and persist an audit record",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		AuditInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_writes_in_flight",
			Help:      "Current number of audit writes not yet finished",
		}),
		AuditPurged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_records_purged_total",
			Help:      "Total number of audit records removed by purge or sweep",
		}),
		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_connections",
			Help:      "Current number of live WebSocket connections",
		}),
		NotificationsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "Total number of notifications handed to live connections by scope",
		}, []string{"scope"}),
		NotificationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Total number of notifications dropped because a send buffer was full",
		}),
	}
}

// NewNop returns collectors registered on a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) IncAuditWrite(outcome string) {
	m.AuditWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddPurged(n int64) {
	if n > 0 {
		m.AuditPurged.Add(float64(n))
	}
}

func (m *Metrics) IncEmitted(scope string, recipients int) {
	if recipients > 0 {
		m.NotificationsEmitted.WithLabelValues(scope).Add(float64(recipients))
	}
}
