// Package router assembles the HTTP routing tree.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authctrl "github.com/soundfolio/accounts/internal/http/controllers/auth"
	healthctrl "github.com/soundfolio/accounts/internal/http/controllers/health"
	httperrors "github.com/soundfolio/accounts/internal/http/errors"
	"github.com/soundfolio/accounts/internal/http/middlewares"
	"github.com/soundfolio/accounts/internal/session"
	"github.com/soundfolio/accounts/internal/store/core"
)

// Deps carries everything the routing tree needs.
type Deps struct {
	Auth     *authctrl.Controllers
	Health   *healthctrl.Controller
	Verifier session.Verifier
	Users    core.UserRepository
	Registry *prometheus.Registry
}

// New builds the router: public auth endpoints, the authenticated group, and
// the operational endpoints.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithLogging())
	r.Use(middlewares.WithRecover())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.Get("/social/start", d.Auth.SocialStart.Start)
		r.Post("/social/callback", d.Auth.SocialCallback.Callback)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAuth(d.Verifier, d.Users))
			r.Get("/me", d.Auth.Me.Me)
			r.Post("/scrobble/link", d.Auth.Scrobble.Link)
		})
	})

	return r
}
