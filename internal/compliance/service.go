package compliance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"sentinela/internal/audit"
	"sentinela/internal/platform/metrics"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/requestcontext"
)

var tracer = otel.Tracer("sentinela/compliance")

// Service manages consent history, privacy settings and data-subject-rights
// requests. Every mutation is paired with exactly one audit entry; a failed
// audit write fails the whole operation, so success implies the trail exists.
type Service struct {
	store   Store
	audit   *audit.Service
	metrics *metrics.Metrics
}

func NewService(store Store, auditSvc *audit.Service, m *metrics.Metrics) *Service {
	return &Service{store: store, audit: auditSvc, metrics: m}
}

// ConsentStatus returns the per-type current consent state for the user.
func (s *Service) ConsentStatus(ctx context.Context, userID string) ([]ConsentStatus, error) {
	statuses, err := s.store.ConsentStatus(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load consent status", err)
	}
	if statuses == nil {
		statuses = []ConsentStatus{}
	}
	return statuses, nil
}

// UpdateConsentInput carries one consent decision. ConsentGiven is a pointer
// because false is a legitimate value: presence is checked by definedness,
// not truthiness.
type UpdateConsentInput struct {
	ConsentType  string `json:"consent_type"`
	ConsentGiven *bool  `json:"consent_given"`
	Version      string `json:"version"`
}

// UpdateConsent appends one consent record and its audit entry. History is
// append-only; concurrent updates for the same user cannot lose records.
func (s *Service) UpdateConsent(ctx context.Context, userID string, in UpdateConsentInput) error {
	ctx, span := tracer.Start(ctx, "compliance.UpdateConsent")
	defer span.End()

	if in.ConsentType == "" || in.ConsentGiven == nil || in.Version == "" {
		return dErrors.New(dErrors.CodeBadRequest, "invalid consent data")
	}

	record := ConsentRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		ConsentType:  in.ConsentType,
		Version:      in.Version,
		ConsentGiven: *in.ConsentGiven,
		IPAddress:    requestcontext.ClientIP(ctx),
		UserAgent:    requestcontext.UserAgent(ctx),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.InsertConsent(ctx, record); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to update consent", err)
	}

	err := s.audit.Record(ctx, userID, "", audit.ActionConsentUpdated, "privacy_consents", "", map[string]any{
		"consent_type":  in.ConsentType,
		"consent_given": *in.ConsentGiven,
		"version":       in.Version,
	})
	if err != nil {
		return err
	}
	s.metrics.IncComplianceRequest("update_consent")
	return nil
}

// CreateExportRequest durably records a data export request. Dedup policy
// lives in the store; a pending duplicate maps to a client error like the
// rest of the validation failures.
func (s *Service) CreateExportRequest(ctx context.Context, userID string) (string, error) {
	ctx, span := tracer.Start(ctx, "compliance.CreateExportRequest")
	defer span.End()

	request := ExportRequest{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    RequestStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateExportRequest(ctx, request); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return "", dErrors.New(dErrors.CodeBadRequest, "an export request is already pending")
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to create export request", err)
	}

	err := s.audit.Record(ctx, userID, "", audit.ActionDataExportRequested, "data_export_requests", request.ID, map[string]any{
		"request_id": request.ID,
	})
	if err != nil {
		return "", err
	}
	s.metrics.IncComplianceRequest("create_export_request")
	return request.ID, nil
}

// CreateDeletionRequestInput carries the optional deletion parameters.
type CreateDeletionRequestInput struct {
	DeletionType  string `json:"deletion_type"`
	Justification string `json:"justification"`
}

// CreateDeletionRequest durably records a data deletion request. The
// deletion type defaults to full_deletion when absent.
func (s *Service) CreateDeletionRequest(ctx context.Context, userID string, in CreateDeletionRequestInput) (string, error) {
	ctx, span := tracer.Start(ctx, "compliance.CreateDeletionRequest")
	defer span.End()

	deletionType := in.DeletionType
	if deletionType == "" {
		deletionType = DeletionTypeFull
	}

	request := DeletionRequest{
		ID:            uuid.NewString(),
		UserID:        userID,
		Status:        RequestStatusPending,
		DeletionType:  deletionType,
		Justification: in.Justification,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateDeletionRequest(ctx, request); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return "", dErrors.New(dErrors.CodeBadRequest, "a deletion request is already pending")
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to create deletion request", err)
	}

	err := s.audit.Record(ctx, userID, "", audit.ActionDataDeletionRequested, "data_deletion_requests", request.ID, map[string]any{
		"deletion_type": deletionType,
		"justification": in.Justification,
	})
	if err != nil {
		return "", err
	}
	s.metrics.IncComplianceRequest("create_deletion_request")
	return request.ID, nil
}

// PrivacySettings returns the stored settings, or the documented defaults
// when the user has no row.
func (s *Service) PrivacySettings(ctx context.Context, userID string) (PrivacySettings, error) {
	settings, err := s.store.GetPrivacySettings(ctx, userID)
	if err != nil {
		return PrivacySettings{}, dErrors.Wrap(dErrors.CodeInternal, "failed to load privacy settings", err)
	}
	if settings == nil {
		return DefaultPrivacySettings(userID), nil
	}
	return *settings, nil
}

// UpdatePrivacySettings merges the patch over the current (or default)
// settings and upserts. Concurrent updates resolve last-writer-wins; there
// is deliberately no conflict detection.
func (s *Service) UpdatePrivacySettings(ctx context.Context, userID string, patch PrivacySettingsPatch) (PrivacySettings, error) {
	ctx, span := tracer.Start(ctx, "compliance.UpdatePrivacySettings")
	defer span.End()

	current, err := s.PrivacySettings(ctx, userID)
	if err != nil {
		return PrivacySettings{}, err
	}

	updated := patch.Apply(current)
	updated.UserID = userID
	updated.UpdatedAt = time.Now().UTC()
	if err := s.store.UpsertPrivacySettings(ctx, updated); err != nil {
		return PrivacySettings{}, dErrors.Wrap(dErrors.CodeInternal, "failed to update privacy settings", err)
	}

	err = s.audit.Record(ctx, userID, "", audit.ActionPrivacySettingsSaved, "privacy_settings", userID, map[string]any{
		"marketing_emails":    updated.MarketingEmails,
		"analytics_tracking":  updated.AnalyticsTracking,
		"chat_data_retention": updated.ChatDataRetention,
		"personalized_ads":    updated.PersonalizedAds,
		"data_sharing":        updated.DataSharing,
	})
	if err != nil {
		return PrivacySettings{}, err
	}
	s.metrics.IncComplianceRequest("update_privacy_settings")
	return updated, nil
}

// LegalDocuments returns active documents, most recently created first.
func (s *Service) LegalDocuments(ctx context.Context) ([]LegalDocument, error) {
	docs, err := s.store.ListActiveLegalDocuments(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load legal documents", err)
	}
	if docs == nil {
		docs = []LegalDocument{}
	}
	return docs, nil
}
