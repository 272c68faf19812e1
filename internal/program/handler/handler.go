package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ijazah/internal/platform/middleware"
	"ijazah/internal/program/models"
	programservice "ijazah/internal/program/service"
	dErrors "ijazah/pkg/domain-errors"
	"ijazah/pkg/platform/httputil"
)

// Service defines the program operations used by the handler.
type Service interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.Program, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateRequest) (*models.Program, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Program, error)
	List(ctx context.Context) ([]*models.Program, error)
}

// Handler wires program endpoints to the program service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a program handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRead mounts read endpoints available to any authenticated actor.
func (h *Handler) RegisterRead(r chi.Router) {
	r.Get("/programs", h.HandleList)
	r.Get("/programs/{id}", h.HandleGet)
}

// RegisterAdmin mounts write endpoints restricted to admins.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/programs", h.HandleCreate)
	r.Put("/programs/{id}", h.HandleUpdate)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}

// HandleList handles GET /programs.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	programs, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, programs)
}

// HandleGet handles GET /programs/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	program, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, program)
}

// HandleCreate handles POST /programs.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	program, err := h.service.Create(ctx, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, program)
}

// HandleUpdate handles PUT /programs/{id}.
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
	program, err := h.service.Update(ctx, id, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, program)
}

var _ Service = (*programservice.Service)(nil)
