package compliance

import "time"

// ConsentRecord is one append-only statement of a user's agreement or
// disagreement to a named data-processing purpose at a policy version. The
// current consent for a type is the most recent record for the
// (user, consent_type) pair; history is never overwritten.
type ConsentRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ConsentType  string    `json:"consent_type"`
	Version      string    `json:"version"`
	ConsentGiven bool      `json:"consent_given"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConsentStatus is the per-type current state returned by get_consent_status.
type ConsentStatus struct {
	ConsentType  string    `json:"consent_type"`
	ConsentGiven bool      `json:"consent_given"`
	Version      string    `json:"version"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PrivacySettings is the one-row-per-user preference record.
type PrivacySettings struct {
	UserID            string    `json:"user_id"`
	MarketingEmails   bool      `json:"marketing_emails"`
	AnalyticsTracking bool      `json:"analytics_tracking"`
	ChatDataRetention bool      `json:"chat_data_retention"`
	PersonalizedAds   bool      `json:"personalized_ads"`
	DataSharing       bool      `json:"data_sharing"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultPrivacySettings returns the documented defaults applied when no row
// exists for the user. Absence of a row is not an error.
func DefaultPrivacySettings(userID string) PrivacySettings {
	return PrivacySettings{
		UserID:            userID,
		MarketingEmails:   true,
		AnalyticsTracking: true,
		ChatDataRetention: true,
		PersonalizedAds:   true,
		DataSharing:       false,
	}
}

// PrivacySettingsPatch is a partial update; nil fields are left unchanged.
type PrivacySettingsPatch struct {
	MarketingEmails   *bool `json:"marketing_emails,omitempty"`
	AnalyticsTracking *bool `json:"analytics_tracking,omitempty"`
	ChatDataRetention *bool `json:"chat_data_retention,omitempty"`
	PersonalizedAds   *bool `json:"personalized_ads,omitempty"`
	DataSharing       *bool `json:"data_sharing,omitempty"`
}

// Apply merges the patch into settings and returns the result.
func (p PrivacySettingsPatch) Apply(settings PrivacySettings) PrivacySettings {
	if p.MarketingEmails != nil {
		settings.MarketingEmails = *p.MarketingEmails
	}
	if p.AnalyticsTracking != nil {
		settings.AnalyticsTracking = *p.AnalyticsTracking
	}
	if p.ChatDataRetention != nil {
		settings.ChatDataRetention = *p.ChatDataRetention
	}
	if p.PersonalizedAds != nil {
		settings.PersonalizedAds = *p.PersonalizedAds
	}
	if p.DataSharing != nil {
		settings.DataSharing = *p.DataSharing
	}
	return settings
}

// RequestStatus tracks a data-subject-rights request. Fulfillment past
// pending is owned by the external worker.
type RequestStatus string

const (
	RequestStatusPending RequestStatus = "pending"
)

// DeletionTypeFull is the default deletion scope.
const DeletionTypeFull = "full_deletion"

// ExportRequest is a durable request for a data export.
type ExportRequest struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// DeletionRequest is a durable request for data deletion.
type DeletionRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Status        RequestStatus `json:"status"`
	DeletionType  string        `json:"deletion_type"`
	Justification string        `json:"justification,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// LegalDocument is a published policy document.
type LegalDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DocType   string    `json:"doc_type"`
	Version   string    `json:"version"`
	Content   string    `json:"content"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
