package audit

import "context"

// Store persists audit entries. Append-only by contract.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByActor(ctx context.Context, actorID string) ([]Entry, error)
}
