package security

import (
	"context"
	"time"
)

// Store persists security events and alerts. Events are immutable once
// inserted; there is no update or delete path.
type Store interface {
	InsertEvent(ctx context.Context, event Event) error
	// ListBySeverities returns events in any of the given severities,
	// newest first, at most limit rows.
	ListBySeverities(ctx context.Context, severities []Severity, limit int) ([]Event, error)
	// ListByTypesSince returns events of any of the given types created at or
	// after since, newest first, at most limit rows.
	ListByTypesSince(ctx context.Context, eventTypes []string, since time.Time, limit int) ([]Event, error)
	InsertAlert(ctx context.Context, alert Alert) error
	ListAlerts(ctx context.Context, limit int) ([]Alert, error)
}
