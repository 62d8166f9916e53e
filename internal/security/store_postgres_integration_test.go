//go:build integration

package security_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"sentinela/internal/security"
	"sentinela/pkg/testutil/containers"
)

const securitySchema = `
CREATE TABLE security_events (
	id UUID PRIMARY KEY,
	event_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL,
	source_ip TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	user_id UUID,
	company_id UUID,
	metadata JSONB,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE security_alerts (
	id UUID PRIMARY KEY,
	recipients JSONB NOT NULL,
	event_data JSONB NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *security.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), securitySchema)
	s.store = security.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "security_events", "security_alerts"))
}

func (s *PostgresStoreSuite) TestInsertAndListBySeverities() {
	ctx := context.Background()
	now := time.Now().UTC()

	for i, sev := range []security.Severity{security.SeverityLow, security.SeverityHigh, security.SeverityCritical} {
		event := security.Event{
			ID:          uuid.NewString(),
			EventType:   "login_failure",
			Severity:    sev,
			Description: "failed login",
			SourceIP:    "10.0.0.1",
			UserAgent:   "curl/8.0",
			Metadata:    map[string]any{"attempt": i},
			CreatedAt:   now.Add(time.Duration(i) * time.Second),
		}
		s.Require().NoError(s.store.InsertEvent(ctx, event))
	}

	events, err := s.store.ListBySeverities(ctx, security.AlertSeverities, 100)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	// Newest first.
	s.Equal(security.SeverityCritical, events[0].Severity)
	s.Equal(security.SeverityHigh, events[1].Severity)
}

func (s *PostgresStoreSuite) TestListByTypesSinceHonorsWindowAndLimit() {
	ctx := context.Background()
	now := time.Now().UTC()

	insert := func(eventType string, age time.Duration) {
		s.Require().NoError(s.store.InsertEvent(ctx, security.Event{
			ID:          uuid.NewString(),
			EventType:   eventType,
			Severity:    security.SeverityMedium,
			Description: "d",
			SourceIP:    "10.0.0.2",
			CreatedAt:   now.Add(-age),
		}))
	}
	insert(security.EventTypeBruteForce, time.Hour)
	insert(security.EventTypeBruteForce, 2*time.Hour)
	insert(security.EventTypeBruteForce, 48*time.Hour) // outside window
	insert("other_type", time.Hour)

	events, err := s.store.ListByTypesSince(ctx, []string{security.EventTypeBruteForce}, now.Add(-24*time.Hour), 50)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.True(events[0].CreatedAt.After(events[1].CreatedAt))
}

func (s *PostgresStoreSuite) TestInsertAndListAlerts() {
	ctx := context.Background()

	alert := security.Alert{
		ID:         uuid.NewString(),
		Recipients: []string{"admin@example.com"},
		EventData:  map[string]any{"event_type": "brute_force_attempt", "severity": "high"},
		Status:     security.AlertStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	s.Require().NoError(s.store.InsertAlert(ctx, alert))

	alerts, err := s.store.ListAlerts(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(alerts, 1)
	s.Equal([]string{"admin@example.com"}, alerts[0].Recipients)
	s.Equal(security.AlertStatusPending, alerts[0].Status)
}
