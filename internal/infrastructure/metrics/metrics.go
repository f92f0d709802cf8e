// Package metrics holds the Prometheus collectors of the engine. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Applications      *prometheus.CounterVec
	Transitions       *prometheus.CounterVec
	Overrides         *prometheus.CounterVec
	Repayments        *prometheus.CounterVec
	AuditDegraded     *prometheus.CounterVec
	UnderwriteLatency prometheus.Histogram
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Applications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_applications_total",
			Help: "Loan applications by outcome (accepted or the rejection reason)",
		}, []string{"outcome"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_status_transitions_total",
			Help: "Normal-flow status transitions by target status",
		}, []string{"to"}),
		Overrides: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_status_overrides_total",
			Help: "Administrative status overrides by target status",
		}, []string{"to"}),
		Repayments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_repayments_total",
			Help: "Posted repayments by status",
		}, []string{"status"}),
		AuditDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lending_audit_degraded_total",
			Help: "Mutations committed whose audit event could not be delivered immediately",
		}, []string{"action"}),
		UnderwriteLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lending_underwrite_duration_seconds",
			Help:    "Duration of an application from lock to commit",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncApplication(outcome string) {
	if m != nil {
		m.Applications.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncTransition(to string) {
	if m != nil {
		m.Transitions.WithLabelValues(to).Inc()
	}
}

func (m *Metrics) IncOverride(to string) {
	if m != nil {
		m.Overrides.WithLabelValues(to).Inc()
	}
}

func (m *Metrics) IncRepayment(status string) {
	if m != nil {
		m.Repayments.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncAuditDegraded(action string) {
	if m != nil {
		m.AuditDegraded.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) ObserveUnderwrite(d time.Duration) {
	if m != nil {
		m.UnderwriteLatency.Observe(d.Seconds())
	}
}
