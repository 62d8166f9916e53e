package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinela/internal/audit"
	"sentinela/internal/compliance"
	jwttoken "sentinela/internal/jwt_token"
	"sentinela/internal/platform/middleware"
)

type testHarness struct {
	router     chi.Router
	store      *compliance.InMemoryStore
	auditStore *audit.InMemoryStore
	jwt        *jwttoken.JWTService
	userID     string
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	store := compliance.NewInMemoryStore()
	auditStore := audit.NewInMemoryStore()
	svc := compliance.NewService(store, audit.NewService(auditStore, nil), nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService := jwttoken.NewJWTService("test-signing-key", "sentinela", "sentinela-api")

	r := chi.NewRouter()
	r.Use(middleware.ClientIP)
	New(svc, jwtService, nil, logger).Register(r)

	return &testHarness{
		router:     r,
		store:      store,
		auditStore: auditStore,
		jwt:        jwtService,
		userID:     uuid.NewString(),
	}
}

func (h *testHarness) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	token, err := h.jwt.GenerateAccessToken(uuid.MustParse(h.userID), uuid.New(), "dashboard", time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequiresAuthentication(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/lgpd-compliance?action=get_consent_status", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeBody(t, rec)["error"])
}

func TestRejectsInvalidToken(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/lgpd-compliance?action=get_consent_status", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownActionRejected(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/lgpd-compliance?action=export_everything", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid action", decodeBody(t, rec)["error_description"])
}

func TestConsentStatusEmpty(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/lgpd-compliance?action=get_consent_status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	statuses, ok := body["consent_status"].([]any)
	require.True(t, ok, "empty status must serialize as an array")
	assert.Empty(t, statuses)
}

func TestUpdateConsentRoundTrip(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/lgpd-compliance?action=update_consent",
		`{"consent_type":"marketing","consent_given":false,"version":"1.0"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "consent updated", body["message"])

	rec = h.do(t, http.MethodGet, "/lgpd-compliance?action=get_consent_status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := decodeBody(t, rec)["consent_status"].([]any)
	require.Len(t, statuses, 1)
	status := statuses[0].(map[string]any)
	assert.Equal(t, "marketing", status["consent_type"])
	assert.Equal(t, false, status["consent_given"])
}

func TestUpdateConsentMissingFields(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/lgpd-compliance?action=update_consent",
		`{"consent_type":"marketing"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid consent data", decodeBody(t, rec)["error_description"])
	assert.Empty(t, h.auditStore.All())
}

func TestCreateExportRequestAndDuplicate(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/lgpd-compliance?action=create_export_request", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["request_id"])
	assert.Equal(t, "export request created", body["message"])

	rec = h.do(t, http.MethodPost, "/lgpd-compliance?action=create_export_request", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "an export request is already pending", decodeBody(t, rec)["error_description"])
}

func TestCreateDeletionRequestWithoutBody(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/lgpd-compliance?action=create_deletion_request", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "deletion request created", body["message"])

	entries := h.auditStore.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "full_deletion", entries[0].Metadata["deletion_type"])
}

func TestPrivacySettingsDefaults(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/lgpd-compliance?action=get_privacy_settings", "")

	require.Equal(t, http.StatusOK, rec.Code)
	settings := decodeBody(t, rec)["privacy_settings"].(map[string]any)
	assert.Equal(t, true, settings["marketing_emails"])
	assert.Equal(t, true, settings["analytics_tracking"])
	assert.Equal(t, true, settings["chat_data_retention"])
	assert.Equal(t, true, settings["personalized_ads"])
	assert.Equal(t, false, settings["data_sharing"])
}

func TestUpdatePrivacySettings(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/lgpd-compliance?action=update_privacy_settings",
		`{"marketing_emails":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "privacy settings updated", decodeBody(t, rec)["message"])

	rec = h.do(t, http.MethodGet, "/lgpd-compliance?action=get_privacy_settings", "")
	settings := decodeBody(t, rec)["privacy_settings"].(map[string]any)
	assert.Equal(t, false, settings["marketing_emails"])
	assert.Equal(t, true, settings["analytics_tracking"])
}

func TestLegalDocuments(t *testing.T) {
	h := newHarness(t)
	h.store.SeedDocument(compliance.LegalDocument{
		ID: uuid.NewString(), Title: "Privacy Policy", DocType: "privacy_policy",
		Version: "1.0", IsActive: true, CreatedAt: time.Now().UTC(),
	})

	rec := h.do(t, http.MethodGet, "/lgpd-compliance?action=get_legal_documents", "")

	require.Equal(t, http.StatusOK, rec.Code)
	docs := decodeBody(t, rec)["legal_documents"].([]any)
	require.Len(t, docs, 1)
	assert.Equal(t, "Privacy Policy", docs[0].(map[string]any)["title"])
}
