package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sentinela/internal/audit"
	"sentinela/internal/audit/mocks"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/requestcontext"
)

func boolPtr(b bool) *bool { return &b }

type ComplianceServiceSuite struct {
	suite.Suite
	store      *InMemoryStore
	auditStore *audit.InMemoryStore
	service    *Service
	userID     string
	ctx        context.Context
}

func TestComplianceServiceSuite(t *testing.T) {
	suite.Run(t, new(ComplianceServiceSuite))
}

func (s *ComplianceServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()
	s.service = NewService(s.store, audit.NewService(s.auditStore, nil), nil)
	s.userID = uuid.NewString()
	ctx := requestcontext.WithClientIP(context.Background(), "203.0.113.9")
	s.ctx = requestcontext.WithUserAgent(ctx, "Mozilla/5.0")
}

func (s *ComplianceServiceSuite) TestUpdateConsentValidation() {
	tests := []struct {
		name string
		in   UpdateConsentInput
	}{
		{"missing type", UpdateConsentInput{ConsentGiven: boolPtr(true), Version: "1.0"}},
		{"missing given", UpdateConsentInput{ConsentType: "marketing", Version: "1.0"}},
		{"missing version", UpdateConsentInput{ConsentType: "marketing", ConsentGiven: boolPtr(true)}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.service.UpdateConsent(s.ctx, s.userID, tt.in)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
			s.Empty(s.auditStore.All(), "rejected input must not be audited")
		})
	}
}

func (s *ComplianceServiceSuite) TestUpdateConsentFalseIsValid() {
	err := s.service.UpdateConsent(s.ctx, s.userID, UpdateConsentInput{
		ConsentType:  "marketing",
		ConsentGiven: boolPtr(false),
		Version:      "1.0",
	})
	s.Require().NoError(err)

	records := s.store.Consents(s.userID)
	s.Require().Len(records, 1)
	s.False(records[0].ConsentGiven)
	s.Equal("203.0.113.9", records[0].IPAddress)
	s.Equal("Mozilla/5.0", records[0].UserAgent)
}

func (s *ComplianceServiceSuite) TestUpdateConsentAppendsHistoryAndAudits() {
	for _, given := range []bool{true, false} {
		err := s.service.UpdateConsent(s.ctx, s.userID, UpdateConsentInput{
			ConsentType:  "analytics",
			ConsentGiven: boolPtr(given),
			Version:      "2.0",
		})
		s.Require().NoError(err)
	}

	s.Len(s.store.Consents(s.userID), 2, "history is append-only")

	entries := s.auditStore.All()
	s.Require().Len(entries, 2)
	for _, e := range entries {
		s.Equal(audit.ActionConsentUpdated, e.Action)
		s.Equal(s.userID, e.ActorID)
		s.Equal("privacy_consents", e.TargetType)
		s.Equal("analytics", e.Metadata["consent_type"])
	}
	s.Equal(false, entries[1].Metadata["consent_given"])
}

func (s *ComplianceServiceSuite) TestConsentStatusReflectsLatestRecord() {
	for _, given := range []bool{true, false} {
		s.Require().NoError(s.service.UpdateConsent(s.ctx, s.userID, UpdateConsentInput{
			ConsentType:  "marketing",
			ConsentGiven: boolPtr(given),
			Version:      "1.0",
		}))
	}
	s.Require().NoError(s.service.UpdateConsent(s.ctx, s.userID, UpdateConsentInput{
		ConsentType:  "analytics",
		ConsentGiven: boolPtr(true),
		Version:      "1.0",
	}))

	statuses, err := s.service.ConsentStatus(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(statuses, 2)

	byType := map[string]bool{}
	for _, st := range statuses {
		byType[st.ConsentType] = st.ConsentGiven
	}
	s.Equal(false, byType["marketing"], "latest record wins")
	s.Equal(true, byType["analytics"])
}

func (s *ComplianceServiceSuite) TestConsentStatusEmptyForUnknownUser() {
	statuses, err := s.service.ConsentStatus(s.ctx, uuid.NewString())
	s.Require().NoError(err)
	s.NotNil(statuses)
	s.Empty(statuses)
}

func (s *ComplianceServiceSuite) TestCreateExportRequest() {
	id, err := s.service.CreateExportRequest(s.ctx, s.userID)
	s.Require().NoError(err)
	s.NotEmpty(id)

	entries := s.auditStore.All()
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionDataExportRequested, entries[0].Action)
	s.Equal(id, entries[0].TargetID)
}

func (s *ComplianceServiceSuite) TestCreateExportRequestRejectsPendingDuplicate() {
	_, err := s.service.CreateExportRequest(s.ctx, s.userID)
	s.Require().NoError(err)

	_, err = s.service.CreateExportRequest(s.ctx, s.userID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Len(s.auditStore.All(), 1, "rejected duplicate must not be audited")
}

func (s *ComplianceServiceSuite) TestCreateDeletionRequestDefaultsType() {
	id, err := s.service.CreateDeletionRequest(s.ctx, s.userID, CreateDeletionRequestInput{})
	s.Require().NoError(err)
	s.NotEmpty(id)

	entries := s.auditStore.All()
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionDataDeletionRequested, entries[0].Action)
	s.Equal(DeletionTypeFull, entries[0].Metadata["deletion_type"])
}

func (s *ComplianceServiceSuite) TestCreateDeletionRequestKeepsExplicitType() {
	_, err := s.service.CreateDeletionRequest(s.ctx, s.userID, CreateDeletionRequestInput{
		DeletionType:  "partial_deletion",
		Justification: "keep invoices",
	})
	s.Require().NoError(err)

	entries := s.auditStore.All()
	s.Require().Len(entries, 1)
	s.Equal("partial_deletion", entries[0].Metadata["deletion_type"])
	s.Equal("keep invoices", entries[0].Metadata["justification"])
}

func (s *ComplianceServiceSuite) TestPrivacySettingsDefaultsWhenAbsent() {
	settings, err := s.service.PrivacySettings(s.ctx, s.userID)
	s.Require().NoError(err)

	s.Equal(s.userID, settings.UserID)
	s.True(settings.MarketingEmails)
	s.True(settings.AnalyticsTracking)
	s.True(settings.ChatDataRetention)
	s.True(settings.PersonalizedAds)
	s.False(settings.DataSharing)
	s.Empty(s.auditStore.All(), "reads are not audited")
}

func (s *ComplianceServiceSuite) TestUpdatePrivacySettingsMergesPatchOverDefaults() {
	updated, err := s.service.UpdatePrivacySettings(s.ctx, s.userID, PrivacySettingsPatch{
		MarketingEmails: boolPtr(false),
		DataSharing:     boolPtr(true),
	})
	s.Require().NoError(err)

	s.False(updated.MarketingEmails)
	s.True(updated.DataSharing)
	s.True(updated.AnalyticsTracking, "untouched fields keep defaults")

	stored, err := s.service.PrivacySettings(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(updated.MarketingEmails, stored.MarketingEmails)
	s.Equal(updated.DataSharing, stored.DataSharing)

	entries := s.auditStore.All()
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionPrivacySettingsSaved, entries[0].Action)
	s.Equal(false, entries[0].Metadata["marketing_emails"])
}

func (s *ComplianceServiceSuite) TestUpdatePrivacySettingsLastWriterWins() {
	_, err := s.service.UpdatePrivacySettings(s.ctx, s.userID, PrivacySettingsPatch{
		MarketingEmails: boolPtr(false),
	})
	s.Require().NoError(err)

	updated, err := s.service.UpdatePrivacySettings(s.ctx, s.userID, PrivacySettingsPatch{
		AnalyticsTracking: boolPtr(false),
	})
	s.Require().NoError(err)

	s.False(updated.MarketingEmails, "earlier write survives the merge")
	s.False(updated.AnalyticsTracking)
}

func (s *ComplianceServiceSuite) TestLegalDocumentsActiveNewestFirst() {
	now := time.Now().UTC()
	s.store.SeedDocument(LegalDocument{ID: "old", Title: "Privacy Policy", DocType: "privacy_policy", Version: "1.0", IsActive: true, CreatedAt: now.Add(-time.Hour)})
	s.store.SeedDocument(LegalDocument{ID: "new", Title: "Privacy Policy", DocType: "privacy_policy", Version: "2.0", IsActive: true, CreatedAt: now})
	s.store.SeedDocument(LegalDocument{ID: "draft", Title: "Terms", DocType: "terms", Version: "0.1", IsActive: false, CreatedAt: now})

	docs, err := s.service.LegalDocuments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("new", docs[0].ID)
	s.Equal("old", docs[1].ID)
}

// Audit pairing: a failed audit append fails the operation that triggered it.

type AuditPairingSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockAudit *mocks.MockStore
	store     *InMemoryStore
	service   *Service
	userID    string
}

func TestAuditPairingSuite(t *testing.T) {
	suite.Run(t, new(AuditPairingSuite))
}

func (s *AuditPairingSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAudit = mocks.NewMockStore(s.ctrl)
	s.store = NewInMemoryStore()
	s.service = NewService(s.store, audit.NewService(s.mockAudit, nil), nil)
	s.userID = uuid.NewString()
}

func (s *AuditPairingSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuditPairingSuite) TestUpdateConsentFailsWhenAuditFails() {
	s.mockAudit.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeInternal, "audit store down"))

	err := s.service.UpdateConsent(context.Background(), s.userID, UpdateConsentInput{
		ConsentType:  "marketing",
		ConsentGiven: boolPtr(true),
		Version:      "1.0",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *AuditPairingSuite) TestCreateExportRequestFailsWhenAuditFails() {
	s.mockAudit.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeInternal, "audit store down"))

	_, err := s.service.CreateExportRequest(context.Background(), s.userID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *AuditPairingSuite) TestUpdatePrivacySettingsFailsWhenAuditFails() {
	s.mockAudit.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeInternal, "audit store down"))

	_, err := s.service.UpdatePrivacySettings(context.Background(), s.userID, PrivacySettingsPatch{
		DataSharing: boolPtr(true),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
