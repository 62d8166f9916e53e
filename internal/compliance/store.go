package compliance

import "context"

// Store persists consent history, privacy settings, data-subject requests
// and legal documents. Consent is append-only; privacy settings are a
// last-writer-wins upsert keyed by user.
type Store interface {
	InsertConsent(ctx context.Context, record ConsentRecord) error
	// ConsentStatus returns the latest record per consent type for the user.
	ConsentStatus(ctx context.Context, userID string) ([]ConsentStatus, error)
	// GetPrivacySettings returns nil with no error when the user has no row.
	GetPrivacySettings(ctx context.Context, userID string) (*PrivacySettings, error)
	UpsertPrivacySettings(ctx context.Context, settings PrivacySettings) error
	// CreateExportRequest owns any dedup policy; duplicates yield a conflict
	// domain error.
	CreateExportRequest(ctx context.Context, request ExportRequest) error
	CreateDeletionRequest(ctx context.Context, request DeletionRequest) error
	// ListActiveLegalDocuments returns active documents, newest first.
	ListActiveLegalDocuments(ctx context.Context) ([]LegalDocument, error)
}
