package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ijazah/internal/credential/models"
	credentialservice "ijazah/internal/credential/service"
	"ijazah/internal/credential/statemachine"
	"ijazah/internal/platform/middleware"
	"ijazah/pkg/domain"
	dErrors "ijazah/pkg/domain-errors"
	"ijazah/pkg/platform/httputil"
)

// Service defines the credential operations used by the handler.
type Service interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.Credential, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateRequest) (*models.Credential, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Credential, error)
	GetBySerial(ctx context.Context, serialNumber string) (*models.Credential, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Credential, error)
	ListPendingReview(ctx context.Context) ([]*models.Credential, error)
	ListByHolderUser(ctx context.Context, userID uuid.UUID) ([]*models.Credential, error)
	Transition(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID,
		t statemachine.Transition, note string) (*models.Credential, error)
	ReviewerStats(ctx context.Context, reviewerID uuid.UUID) (int, error)
}

// Handler wires credential endpoints to the credential service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a credential handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterStaff mounts read endpoints for admins and reviewers.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Get("/credentials", h.HandleList)
	r.Get("/credentials/{id}", h.HandleGet)
	r.Get("/credentials/serial/{serial}", h.HandleGetBySerial)
}

// RegisterAdmin mounts issuance and admin-stage transition endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/credentials", h.HandleCreate)
	r.Put("/credentials/{id}", h.HandleUpdate)
	r.Delete("/credentials/{id}", h.HandleDelete)
	r.Post("/credentials/{id}/approve", h.transition(statemachine.TransitionAdminApprove))
	r.Post("/credentials/{id}/reject", h.transition(statemachine.TransitionAdminReject))
	r.Post("/credentials/{id}/resubmit", h.transition(statemachine.TransitionResubmit))
}

// RegisterReviewer mounts the review queue and reviewer-stage transitions.
func (h *Handler) RegisterReviewer(r chi.Router) {
	r.Get("/credentials/pending-review", h.HandlePendingReview)
	r.Post("/credentials/{id}/validate", h.transition(statemachine.TransitionReviewerApprove))
	r.Post("/credentials/{id}/decline", h.transition(statemachine.TransitionReviewerReject))
	r.Get("/reviewers/me/stats", h.HandleReviewerStats)
}

// RegisterStudent mounts the self-listing endpoint for students.
func (h *Handler) RegisterStudent(r chi.Router) {
	r.Get("/credentials/mine", h.HandleMine)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}

// decodeNote reads the optional transition note. Transition endpoints accept
// an empty body.
func decodeNote(r *http.Request) string {
	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.Note)
}

// HandleCreate handles POST /credentials.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	credential, err := h.service.Create(ctx, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, credential)
}

// HandleUpdate handles PUT /credentials/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[models.UpdateRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	credential, err := h.service.Update(ctx, id, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credential)
}

// HandleDelete handles DELETE /credentials/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /credentials/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	credential, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credential)
}

// HandleGetBySerial handles GET /credentials/serial/{serial}.
func (h *Handler) HandleGetBySerial(w http.ResponseWriter, r *http.Request) {
	credential, err := h.service.GetBySerial(r.Context(), chi.URLParam(r, "serial"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credential)
}

// HandleList handles GET /credentials with optional status and nim filters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var filter models.ListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := statemachine.Status(strings.ToUpper(strings.TrimSpace(raw)))
		if !status.IsValid() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown status filter"))
			return
		}
		filter.Status = &status
	}
	filter.EnrollmentNumber = r.URL.Query().Get("nim")

	credentials, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credentials)
}

// HandlePendingReview handles GET /credentials/pending-review.
func (h *Handler) HandlePendingReview(w http.ResponseWriter, r *http.Request) {
	credentials, err := h.service.ListPendingReview(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credentials)
}

// HandleMine handles GET /credentials/mine for the authenticated student.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)
	if actor.ID == uuid.Nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	credentials, err := h.service.ListByHolderUser(ctx, actor.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credentials)
}

// HandleReviewerStats handles GET /reviewers/me/stats.
func (h *Handler) HandleReviewerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)
	if actor.ID == uuid.Nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	count, err := h.service.ReviewerStats(ctx, actor.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"validated_count": count})
}

func (h *Handler) transition(t statemachine.Transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := middleware.GetActor(ctx)
		if actor.ID == uuid.Nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return
		}
		id, err := parseID(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		credential, err := h.service.Transition(ctx, actor.ID, actor.Role, id, t, decodeNote(r))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, credential)
	}
}

var _ Service = (*credentialservice.Service)(nil)
