// Package health contains the health check controllers.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/soundfolio/accounts/internal/http/helpers"
	"github.com/soundfolio/accounts/internal/observability/logger"
	"github.com/soundfolio/accounts/internal/store/core"
)

// CheckResponse is the readiness payload.
type CheckResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// Controller serves /healthz and /readyz.
type Controller struct {
	version string
	pingers map[string]core.Pinger
}

func NewController(version string, pingers map[string]core.Pinger) *Controller {
	return &Controller{version: version, pingers: pingers}
}

// Healthz handles GET /healthz: liveness only, no dependency checks.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, CheckResponse{Status: "ok", Version: c.version})
}

// Readyz handles GET /readyz: pings every registered dependency.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("Health.Readyz"))

	resp := CheckResponse{Status: "ready", Version: c.version, Components: map[string]string{}}
	for name, p := range c.pingers {
		if err := p.Ping(ctx); err != nil {
			log.Warn("dependency not ready", logger.Component(name), logger.Err(err))
			resp.Status = "unavailable"
			resp.Components[name] = "down"
			continue
		}
		resp.Components[name] = "up"
	}

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, resp)
}
