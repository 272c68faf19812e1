package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ijazah/internal/verification/models"
	verificationservice "ijazah/internal/verification/service"
	dErrors "ijazah/pkg/domain-errors"
	"ijazah/pkg/platform/httputil"
)

// Service defines the verification operations used by the handler.
type Service interface {
	Resolve(ctx context.Context, candidate string, reqCtx verificationservice.RequestContext) *models.Result
	History(ctx context.Context, credentialID uuid.UUID) ([]*models.Event, error)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated lookup endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/verify", h.HandleVerify)
}

// RegisterStaff mounts the audit-trail endpoint for admins and reviewers.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Get("/credentials/{id}/verifications", h.HandleHistory)
}

// HandleVerify handles GET /verify?hash=...&requester=...&info=...
// The response is always 200 with a well-formed Result; negative answers are
// data, not HTTP errors.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result := h.service.Resolve(r.Context(), query.Get("hash"), verificationservice.RequestContext{
		RequesterType: query.Get("requester"),
		Info:          query.Get("info"),
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
	})
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleHistory handles GET /credentials/{id}/verifications.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid id"))
		return
	}
	events, err := h.service.History(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

var _ Service = (*verificationservice.Service)(nil)
