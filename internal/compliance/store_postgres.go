package compliance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	dErrors "sentinela/pkg/domain-errors"
)

// PostgresStore persists compliance state. Pure I/O; pairing with audit
// entries is owned by the service.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertConsent(ctx context.Context, record ConsentRecord) error {
	query := `
		INSERT INTO privacy_consents (id, user_id, consent_type, version, consent_given, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.ConsentType,
		record.Version,
		record.ConsentGiven,
		record.IPAddress,
		record.UserAgent,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert consent record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ConsentStatus(ctx context.Context, userID string) ([]ConsentStatus, error) {
	// Latest record per consent type; DISTINCT ON keeps the newest row.
	query := `
		SELECT DISTINCT ON (consent_type) consent_type, consent_given, version, created_at
		FROM privacy_consents
		WHERE user_id = $1
		ORDER BY consent_type, created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("consent status: %w", err)
	}
	defer rows.Close()

	var statuses []ConsentStatus
	for rows.Next() {
		var st ConsentStatus
		if err := rows.Scan(&st.ConsentType, &st.ConsentGiven, &st.Version, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan consent status: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func (s *PostgresStore) GetPrivacySettings(ctx context.Context, userID string) (*PrivacySettings, error) {
	query := `
		SELECT user_id, marketing_emails, analytics_tracking, chat_data_retention, personalized_ads, data_sharing, updated_at
		FROM privacy_settings
		WHERE user_id = $1
	`
	var settings PrivacySettings
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.MarketingEmails,
		&settings.AnalyticsTracking,
		&settings.ChatDataRetention,
		&settings.PersonalizedAds,
		&settings.DataSharing,
		&settings.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get privacy settings: %w", err)
	}
	return &settings, nil
}

func (s *PostgresStore) UpsertPrivacySettings(ctx context.Context, settings PrivacySettings) error {
	query := `
		INSERT INTO privacy_settings (user_id, marketing_emails, analytics_tracking, chat_data_retention, personalized_ads, data_sharing, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			marketing_emails = EXCLUDED.marketing_emails,
			analytics_tracking = EXCLUDED.analytics_tracking,
			chat_data_retention = EXCLUDED.chat_data_retention,
			personalized_ads = EXCLUDED.personalized_ads,
			data_sharing = EXCLUDED.data_sharing,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		settings.UserID,
		settings.MarketingEmails,
		settings.AnalyticsTracking,
		settings.ChatDataRetention,
		settings.PersonalizedAds,
		settings.DataSharing,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert privacy settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateExportRequest(ctx context.Context, request ExportRequest) error {
	// Partial unique index on (user_id) WHERE status = 'pending' enforces
	// one open request per user.
	query := `
		INSERT INTO data_export_requests (id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, request.ID, request.UserID, string(request.Status), request.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "an export request is already pending")
		}
		return fmt.Errorf("create export request: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateDeletionRequest(ctx context.Context, request DeletionRequest) error {
	query := `
		INSERT INTO data_deletion_requests (id, user_id, status, deletion_type, justification, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		request.ID,
		request.UserID,
		string(request.Status),
		request.DeletionType,
		request.Justification,
		request.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "a deletion request is already pending")
		}
		return fmt.Errorf("create deletion request: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActiveLegalDocuments(ctx context.Context) ([]LegalDocument, error) {
	query := `
		SELECT id, title, doc_type, version, content, is_active, created_at
		FROM legal_documents
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list legal documents: %w", err)
	}
	defer rows.Close()

	var docs []LegalDocument
	for rows.Next() {
		var d LegalDocument
		if err := rows.Scan(&d.ID, &d.Title, &d.DocType, &d.Version, &d.Content, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan legal document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
