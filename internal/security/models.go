package security

import "time"

// Severity is the ordinal classification of a security event.
// low < medium < high < critical; only high/critical trigger alerting.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// RequiresAlert reports whether events of this severity materialize an alert.
func (s Severity) RequiresAlert() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// AlertSeverities is the query set for the admin alert feed.
var AlertSeverities = []Severity{SeverityHigh, SeverityCritical}

// EventTypeBruteForce is the aggregation unit for suspicious-IP detection.
const EventTypeBruteForce = "brute_force_attempt"

// SuspiciousEventTypes are the activity classes surfaced by the
// get_suspicious_activities feed.
var SuspiciousEventTypes = []string{
	"multiple_failed_logins",
	"suspicious_login_location",
	"unusual_access_time",
	"api_rate_limit_exceeded",
	"permission_denied_attempt",
}

// Event is an immutable security event record. source_ip and user_agent are
// transport-derived, never client-supplied.
type Event struct {
	ID          string         `json:"id"`
	EventType   string         `json:"event_type"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	SourceIP    string         `json:"source_ip"`
	UserAgent   string         `json:"user_agent"`
	UserID      string         `json:"user_id,omitempty"`
	CompanyID   string         `json:"company_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AlertStatus tracks delivery of an alert. Transitions past pending are owned
// by the external delivery worker.
type AlertStatus string

const (
	AlertStatusPending AlertStatus = "pending"
	AlertStatusSent    AlertStatus = "sent"
	AlertStatusFailed  AlertStatus = "failed"
)

// Alert is the pending notification materialized for admin recipients when a
// high/critical event is recorded.
type Alert struct {
	ID         string         `json:"id"`
	Recipients []string       `json:"recipients"`
	EventData  map[string]any `json:"event_data"`
	Status     AlertStatus    `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}

// SuspiciousIP is one row of the brute-force aggregation.
type SuspiciousIP struct {
	IP       string `json:"ip"`
	Attempts int    `json:"attempts"`
}
