package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ijazah/internal/anchor/models"
	"ijazah/internal/anchor/orchestrator"
	"ijazah/internal/anchor/store"
	"ijazah/internal/credential/fingerprint"
	"ijazah/internal/render"
	dErrors "ijazah/pkg/domain-errors"
	"ijazah/pkg/platform/httputil"
)

// Publisher drives the anchoring workflow.
type Publisher interface {
	Publish(ctx context.Context, credentialID uuid.UUID) (*models.Result, error)
}

// Handler wires anchoring endpoints to the orchestrator and anchor store.
type Handler struct {
	publisher Publisher
	anchors   store.Store
	resolver  orchestrator.CredentialResolver
	urls      *render.URLBuilder
	renderer  render.Renderer
	logger    *slog.Logger
}

// New constructs an anchor handler.
func New(publisher Publisher, anchors store.Store, logger *slog.Logger) *Handler {
	return &Handler{publisher: publisher, anchors: anchors, logger: logger}
}

// WithArtifacts enables the artifact endpoint, which needs credential data and
// the public verification base URL.
func (h *Handler) WithArtifacts(resolver orchestrator.CredentialResolver, urls *render.URLBuilder, renderer render.Renderer) *Handler {
	h.resolver = resolver
	h.urls = urls
	h.renderer = renderer
	return h
}

// RegisterAdmin mounts the publish endpoint, restricted to admins.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/credentials/{id}/anchor", h.HandlePublish)
}

// RegisterStaff mounts the anchor-status read endpoints.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Get("/credentials/{id}/anchor", h.HandleGet)
	if h.renderer != nil {
		r.Get("/credentials/{id}/artifact", h.HandleArtifact)
	}
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}

// HandlePublish handles POST /credentials/{id}/anchor.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.publisher.Publish(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyAnchored {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, result)
}

// HandleGet handles GET /credentials/{id}/anchor.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.anchors.GetByCredential(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "credential has no anchor record"))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleArtifact handles GET /credentials/{id}/artifact. It produces the
// renderable verification artifact (the QR payload embedded in printed
// diplomas) for any credential whose fingerprint inputs are complete.
func (h *Handler) HandleArtifact(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inputs, _, err := h.resolver.ResolveAnchorSubject(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fp, err := fingerprint.Compute(inputs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	artifact, err := h.renderer.Render(render.Subject{
		SerialNumber:   inputs.SerialNumber,
		HolderName:     inputs.HolderName,
		ProgramCode:    inputs.ProgramCode,
		GraduationDate: inputs.GraduationDate,
	}, h.urls.VerificationURL(fp))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

var _ Publisher = (*orchestrator.Orchestrator)(nil)
