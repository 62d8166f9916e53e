package audit

import "time"

// Entry is an immutable record of who did what to what, when. Append-only;
// there is no update or delete path anywhere in the pipeline.
type Entry struct {
	ID         string
	ActorID    string
	CompanyID  string
	Action     string
	TargetType string
	TargetID   string
	// Metadata is a schema-less key/value payload passed through verbatim.
	Metadata  map[string]any
	CreatedAt time.Time
}

// Action names recorded by the compliance pipeline.
const (
	ActionConsentUpdated        = "consent_updated"
	ActionDataExportRequested   = "data_export_requested"
	ActionDataDeletionRequested = "data_deletion_requested"
	ActionPrivacySettingsSaved  = "privacy_settings_updated"
)
