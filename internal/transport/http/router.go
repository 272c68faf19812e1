// Package httptransport assembles the HTTP surface. Handlers stay thin and
// delegate to domain services; routing and access control live here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	anchorhandler "ijazah/internal/anchor/handler"
	authhandler "ijazah/internal/auth/handler"
	credentialhandler "ijazah/internal/credential/handler"
	holderhandler "ijazah/internal/holder/handler"
	"ijazah/internal/platform/health"
	"ijazah/internal/platform/middleware"
	programhandler "ijazah/internal/program/handler"
	verificationhandler "ijazah/internal/verification/handler"
	"ijazah/pkg/domain"
)

// Deps collects everything the router mounts.
type Deps struct {
	Auth         *authhandler.Handler
	Credentials  *credentialhandler.Handler
	Holders      *holderhandler.Handler
	Programs     *programhandler.Handler
	Anchors      *anchorhandler.Handler
	Verification *verificationhandler.Handler
	Health       *health.Handler
	JWTValidator middleware.JWTValidator
	Logger       *slog.Logger
}

// NewRouter wires all endpoints with the middleware stack and role gates.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(30 * time.Second))

	// Public surface: probes, metrics, login, and the verification lookup.
	d.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		d.Auth.RegisterPublic(r)
	})
	d.Verification.RegisterPublic(r)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(d.JWTValidator, d.Logger))

		d.Auth.RegisterProtected(r)
		d.Programs.RegisterRead(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(d.Logger, domain.RoleAdmin, domain.RoleReviewer))
			d.Credentials.RegisterStaff(r)
			d.Holders.RegisterStaff(r)
			d.Anchors.RegisterStaff(r)
			d.Verification.RegisterStaff(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(d.Logger, domain.RoleAdmin))
			d.Credentials.RegisterAdmin(r)
			d.Holders.RegisterAdmin(r)
			d.Programs.RegisterAdmin(r)
			d.Anchors.RegisterAdmin(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(d.Logger, domain.RoleReviewer))
			d.Credentials.RegisterReviewer(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(d.Logger, domain.RoleStudent))
			d.Credentials.RegisterStudent(r)
			d.Holders.RegisterStudent(r)
		})
	})

	return r
}
