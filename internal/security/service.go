package security

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sentinela/internal/identity"
	"sentinela/internal/platform/config"
	"sentinela/internal/platform/metrics"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/requestcontext"
)

var tracer = otel.Tracer("sentinela/security")

// Service ingests security events and serves the monitoring queries. Alert
// dispatch is synchronous but best-effort: its failures are logged and
// swallowed so event recording never depends on alerting.
type Service struct {
	store    Store
	identity *identity.Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cfg      config.Security
}

func NewService(store Store, ident *identity.Service, logger *slog.Logger, m *metrics.Metrics, cfg config.Security) *Service {
	return &Service{
		store:    store,
		identity: ident,
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
	}
}

// IngestInput carries the client-supplied portion of a security event.
// Provenance fields (source_ip, user_agent) are read from the request
// context, never from here.
type IngestInput struct {
	EventType   string         `json:"event_type"`
	Severity    string         `json:"severity"`
	Description string         `json:"description"`
	UserID      string         `json:"user_id,omitempty"`
	CompanyID   string         `json:"company_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Ingest validates and records one security event, then runs the severity
// gate. A store failure is fatal for the request; an alert failure is not.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (*Event, error) {
	ctx, span := tracer.Start(ctx, "security.Ingest")
	defer span.End()

	if in.EventType == "" || in.Severity == "" || in.Description == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid security event data")
	}
	severity := Severity(in.Severity)
	if !severity.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid security event data")
	}
	span.SetAttributes(
		attribute.String("event.type", in.EventType),
		attribute.String("event.severity", string(severity)),
	)

	event := Event{
		ID:          uuid.NewString(),
		EventType:   in.EventType,
		Severity:    severity,
		Description: in.Description,
		SourceIP:    requestcontext.ClientIP(ctx),
		UserAgent:   requestcontext.UserAgent(ctx),
		UserID:      in.UserID,
		CompanyID:   in.CompanyID,
		Metadata:    in.Metadata,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.InsertEvent(ctx, event); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to record security event", err)
	}
	s.metrics.IncEventIngested(string(severity))

	if severity.RequiresAlert() {
		s.dispatchAlert(ctx, event)
	}

	return &event, nil
}

// Alerts returns the most recent high/critical events for the admin feed.
// Authorization is enforced by the handler before this is called.
func (s *Service) Alerts(ctx context.Context) ([]Event, error) {
	events, err := s.store.ListBySeverities(ctx, AlertSeverities, s.cfg.AlertsLimit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load security alerts", err)
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

// SuspiciousActivities returns recent events of the named suspicious types.
func (s *Service) SuspiciousActivities(ctx context.Context) ([]Event, error) {
	since := time.Now().Add(-s.cfg.SuspiciousWindow)
	events, err := s.store.ListByTypesSince(ctx, SuspiciousEventTypes, since, s.cfg.SuspiciousLimit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load suspicious activities", err)
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}
