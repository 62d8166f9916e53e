package security

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostgresStore persists security events and alerts. Pure I/O: validation,
// grouping and severity gating belong in the service. Array parameters rely
// on the pgx driver registered by platform/postgres.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertEvent(ctx context.Context, event Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}
	query := `
		INSERT INTO security_events (id, event_type, severity, description, source_ip, user_agent, user_id, company_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		string(event.Severity),
		event.Description,
		event.SourceIP,
		event.UserAgent,
		event.UserID,
		event.CompanyID,
		metadata,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySeverities(ctx context.Context, severities []Severity, limit int) ([]Event, error) {
	sevs := make([]string, len(severities))
	for i, sev := range severities {
		sevs[i] = string(sev)
	}
	query := `
		SELECT id, event_type, severity, description, source_ip, user_agent, COALESCE(user_id::text, ''), COALESCE(company_id::text, ''), metadata, created_at
		FROM security_events
		WHERE severity = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, sevs, limit)
	if err != nil {
		return nil, fmt.Errorf("list events by severity: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListByTypesSince(ctx context.Context, eventTypes []string, since time.Time, limit int) ([]Event, error) {
	query := `
		SELECT id, event_type, severity, description, source_ip, user_agent, COALESCE(user_id::text, ''), COALESCE(company_id::text, ''), metadata, created_at
		FROM security_events
		WHERE event_type = ANY($1) AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, eventTypes, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list events by type: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) InsertAlert(ctx context.Context, alert Alert) error {
	recipients, err := json.Marshal(alert.Recipients)
	if err != nil {
		return fmt.Errorf("marshal alert recipients: %w", err)
	}
	eventData, err := json.Marshal(alert.EventData)
	if err != nil {
		return fmt.Errorf("marshal alert event data: %w", err)
	}
	query := `
		INSERT INTO security_alerts (id, recipients, event_data, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.db.ExecContext(ctx, query, alert.ID, recipients, eventData, string(alert.Status), alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert security alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAlerts(ctx context.Context, limit int) ([]Alert, error) {
	query := `
		SELECT id, recipients, event_data, status, created_at
		FROM security_alerts
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var recipients, eventData []byte
		var status string
		if err := rows.Scan(&a.ID, &recipients, &eventData, &status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Status = AlertStatus(status)
		if err := json.Unmarshal(recipients, &a.Recipients); err != nil {
			return nil, fmt.Errorf("unmarshal alert recipients: %w", err)
		}
		if len(eventData) > 0 {
			if err := json.Unmarshal(eventData, &a.EventData); err != nil {
				return nil, fmt.Errorf("unmarshal alert event data: %w", err)
			}
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var severity string
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.EventType, &severity, &e.Description, &e.SourceIP, &e.UserAgent, &e.UserID, &e.CompanyID, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		e.Severity = Severity(severity)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
