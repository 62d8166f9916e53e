package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sentinela/internal/platform/metrics"
	dErrors "sentinela/pkg/domain-errors"
)

// Service records audit entries. The store append is synchronous: callers
// pair it with their state mutation and treat a failure here as failure of
// the whole operation. The mirror publish is decoupled and best-effort.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	mirror  chan<- Entry
}

func NewService(store Store, m *metrics.Metrics) *Service {
	return &Service{store: store, metrics: m}
}

// WithMirror attaches the best-effort publish channel consumed by the worker.
func (s *Service) WithMirror(inbox chan<- Entry) *Service {
	s.mirror = inbox
	return s
}

// Record appends one audit entry. CompanyID and targetID may be empty.
func (s *Service) Record(ctx context.Context, actorID, companyID, action, targetType, targetID string, metadata map[string]any) error {
	if actorID == "" || action == "" || targetType == "" {
		return dErrors.New(dErrors.CodeBadRequest, "audit entry requires actor, action and target type")
	}
	entry := Entry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		CompanyID:  companyID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "audit append failed", err)
	}
	s.metrics.IncAuditEntry()

	if s.mirror != nil {
		// Non-blocking: a full mirror buffer drops the copy, never the request.
		select {
		case s.mirror <- entry:
		default:
		}
	}
	return nil
}

// ListByActor returns the actor's audit trail, newest first for the postgres
// store and insertion order for the memory store.
func (s *Service) ListByActor(ctx context.Context, actorID string) ([]Entry, error) {
	return s.store.ListByActor(ctx, actorID)
}
