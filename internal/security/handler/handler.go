package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sentinela/internal/identity"
	"sentinela/internal/platform/middleware"
	"sentinela/internal/ratelimit"
	"sentinela/internal/security"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/platform/httputil"
	"sentinela/pkg/requestcontext"
)

// Handler serves the security-monitor endpoint. Actions are dispatched via
// the action query parameter; only the alert feed is admin-gated, event
// ingestion stays open so unauthenticated failures can still be recorded.
type Handler struct {
	service   *security.Service
	identity  *identity.Service
	validator middleware.TokenValidator
	recorder  *ratelimit.Recorder
	logger    *slog.Logger
}

func New(
	service *security.Service,
	ident *identity.Service,
	validator middleware.TokenValidator,
	recorder *ratelimit.Recorder,
	logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		identity:  ident,
		validator: validator,
		recorder:  recorder,
		logger:    logger,
	}
}

// Register mounts the security-monitor routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/security-monitor", h.handleDispatch)
	r.Post("/security-monitor", h.handleDispatch)
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action := r.URL.Query().Get("action")

	h.recorder.Hit(ctx, action, requestcontext.ClientIP(ctx))

	switch action {
	case "log_security_event":
		h.handleLogEvent(w, r)
	case "get_security_alerts":
		h.handleAlerts(w, r)
	case "get_bruteforce_attempts":
		h.handleBruteForce(w, r)
	case "get_suspicious_activities":
		h.handleSuspicious(w, r)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid action"))
	}
}

func (h *Handler) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var in security.IngestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.WarnContext(ctx, "invalid security event body",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if _, err := h.service.Ingest(ctx, in); err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "security event rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to record security event",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "security event recorded",
	})
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authorization required"))
		return
	}
	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		h.logger.WarnContext(ctx, "alert feed: invalid token",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credential"))
		return
	}

	// Fresh role check per call: role revocations apply immediately.
	if _, err := h.identity.RequireRole(ctx, claims.UserID, identity.AdminRoles...); err != nil {
		h.logger.WarnContext(ctx, "alert feed: access denied",
			"request_id", requestID,
			"user_id", claims.UserID,
		)
		httputil.WriteError(w, err)
		return
	}

	alerts, err := h.service.Alerts(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load security alerts",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) handleBruteForce(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.service.BruteForce(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load brute force report",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleSuspicious(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activities, err := h.service.SuspiciousActivities(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load suspicious activities",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"suspicious_activities": activities})
}
