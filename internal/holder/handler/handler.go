package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ijazah/internal/holder/models"
	holderservice "ijazah/internal/holder/service"
	"ijazah/internal/platform/middleware"
	dErrors "ijazah/pkg/domain-errors"
	"ijazah/pkg/platform/httputil"
)

// Service defines the holder operations used by the handler.
type Service interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.Holder, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateRequest) (*models.Holder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Holder, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Holder, error)
	List(ctx context.Context) ([]*models.Holder, error)
}

// Handler wires holder endpoints to the holder service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a holder handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterStaff mounts endpoints for admins and reviewers.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Get("/holders", h.HandleList)
	r.Get("/holders/{id}", h.HandleGet)
}

// RegisterAdmin mounts write endpoints restricted to admins.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/holders", h.HandleCreate)
	r.Put("/holders/{id}", h.HandleUpdate)
}

// RegisterStudent mounts the self-view endpoint for students.
func (h *Handler) RegisterStudent(r chi.Router) {
	r.Get("/holders/me", h.HandleSelf)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}

// HandleList handles GET /holders.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	holders, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, holders)
}

// HandleGet handles GET /holders/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	holder, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, holder)
}

// HandleSelf handles GET /holders/me for the authenticated student.
func (h *Handler) HandleSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)
	if actor.ID == uuid.Nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	holder, err := h.service.GetByUser(ctx, actor.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, holder)
}

// HandleCreate handles POST /holders.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	holder, err := h.service.Create(ctx, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, holder)
}

// HandleUpdate handles PUT /holders/{id}.
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
	holder, err := h.service.Update(ctx, id, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, holder)
}

var _ Service = (*holderservice.Service)(nil)
