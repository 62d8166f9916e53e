package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sentinela/internal/compliance"
	"sentinela/internal/platform/middleware"
	"sentinela/internal/ratelimit"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/platform/httputil"
	"sentinela/pkg/requestcontext"
)

// Handler serves the lgpd-compliance endpoint. Every action requires an
// authenticated user; RequireAuth runs before dispatch.
type Handler struct {
	service   *compliance.Service
	validator middleware.TokenValidator
	recorder  *ratelimit.Recorder
	logger    *slog.Logger
}

func New(
	service *compliance.Service,
	validator middleware.TokenValidator,
	recorder *ratelimit.Recorder,
	logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
		recorder:  recorder,
		logger:    logger,
	}
}

// Register mounts the lgpd-compliance routes behind authentication.
func (h *Handler) Register(r chi.Router) {
	complianceRouter := chi.NewRouter()
	complianceRouter.Use(middleware.RequireAuth(h.validator, h.logger))
	complianceRouter.Get("/lgpd-compliance", h.handleDispatch)
	complianceRouter.Post("/lgpd-compliance", h.handleDispatch)

	r.Mount("/", complianceRouter)
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action := r.URL.Query().Get("action")

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		// Should never happen behind RequireAuth.
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	h.recorder.Hit(ctx, action, requestcontext.ClientIP(ctx))

	switch action {
	case "get_consent_status":
		h.handleConsentStatus(w, r, userID)
	case "update_consent":
		h.handleUpdateConsent(w, r, userID)
	case "create_export_request":
		h.handleCreateExportRequest(w, r, userID)
	case "create_deletion_request":
		h.handleCreateDeletionRequest(w, r, userID)
	case "get_privacy_settings":
		h.handlePrivacySettings(w, r, userID)
	case "update_privacy_settings":
		h.handleUpdatePrivacySettings(w, r, userID)
	case "get_legal_documents":
		h.handleLegalDocuments(w, r)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid action"))
	}
}

func (h *Handler) handleConsentStatus(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	statuses, err := h.service.ConsentStatus(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load consent status",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"consent_status": statuses})
}

func (h *Handler) handleUpdateConsent(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var in compliance.UpdateConsentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.WarnContext(ctx, "invalid consent update body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.service.UpdateConsent(ctx, userID, in); err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "consent update rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
		} else {
			h.logger.ErrorContext(ctx, "failed to update consent",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "consent updated",
	})
}

func (h *Handler) handleCreateExportRequest(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	requestID, err := h.service.CreateExportRequest(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create export request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"request_id": requestID,
		"message":    "export request created",
	})
}

func (h *Handler) handleCreateDeletionRequest(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	var in compliance.CreateDeletionRequestInput
	if r.Body != nil {
		// Body is optional; deletion_type defaults to full_deletion.
		_ = json.NewDecoder(r.Body).Decode(&in)
	}

	requestID, err := h.service.CreateDeletionRequest(ctx, userID, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create deletion request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"request_id": requestID,
		"message":    "deletion request created",
	})
}

func (h *Handler) handlePrivacySettings(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	settings, err := h.service.PrivacySettings(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load privacy settings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"privacy_settings": settings})
}

func (h *Handler) handleUpdatePrivacySettings(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var patch compliance.PrivacySettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.WarnContext(ctx, "invalid privacy settings body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if _, err := h.service.UpdatePrivacySettings(ctx, userID, patch); err != nil {
		h.logger.ErrorContext(ctx, "failed to update privacy settings",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "privacy settings updated",
	})
}

func (h *Handler) handleLegalDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docs, err := h.service.LegalDocuments(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load legal documents",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"legal_documents": docs})
}
