package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EventsIngested     *prometheus.CounterVec
	AlertsCreated      prometheus.Counter
	AlertFailures      prometheus.Counter
	ComplianceRequests *prometheus.CounterVec
	AuditEntries       prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EventsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinela_security_events_total",
			Help: "Security events ingested, labeled by severity",
		}, []string{"severity"}),
		AlertsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_security_alerts_total",
			Help: "Security alerts materialized for admin recipients",
		}),
		AlertFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_security_alert_failures_total",
			Help: "Alert dispatch attempts that failed (best-effort, swallowed)",
		}),
		ComplianceRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinela_compliance_requests_total",
			Help: "Compliance operations performed, labeled by action",
		}, []string{"action"}),
		AuditEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinela_audit_entries_total",
			Help: "Audit log entries recorded",
		}),
	}
}

// IncEventIngested increments the ingest counter for a severity.
func (m *Metrics) IncEventIngested(severity string) {
	if m == nil {
		return
	}
	m.EventsIngested.WithLabelValues(severity).Inc()
}

// IncAlertCreated increments the alert counter.
func (m *Metrics) IncAlertCreated() {
	if m == nil {
		return
	}
	m.AlertsCreated.Inc()
}

// IncAlertFailure increments the swallowed alert failure counter.
func (m *Metrics) IncAlertFailure() {
	if m == nil {
		return
	}
	m.AlertFailures.Inc()
}

// IncComplianceRequest increments the compliance counter for an action.
func (m *Metrics) IncComplianceRequest(action string) {
	if m == nil {
		return
	}
	m.ComplianceRequests.WithLabelValues(action).Inc()
}

// IncAuditEntry increments the audit entry counter.
func (m *Metrics) IncAuditEntry() {
	if m == nil {
		return
	}
	m.AuditEntries.Inc()
}
