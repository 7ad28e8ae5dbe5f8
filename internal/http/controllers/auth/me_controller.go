package auth

import (
	"net/http"

	dto "github.com/soundfolio/accounts/internal/http/dto/auth"
	httperrors "github.com/soundfolio/accounts/internal/http/errors"
	"github.com/soundfolio/accounts/internal/http/helpers"
	"github.com/soundfolio/accounts/internal/http/middlewares"
	svc "github.com/soundfolio/accounts/internal/http/services/auth"
	"github.com/soundfolio/accounts/internal/linker"
	"github.com/soundfolio/accounts/internal/observability/logger"
	"github.com/soundfolio/accounts/internal/provider"
)

// MeController serves the live profile summary.
type MeController struct {
	service svc.MeService
}

func NewMeController(service svc.MeService) *MeController {
	return &MeController{service: service}
}

// Me handles GET /v1/auth/me
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MeController.Me"))

	user := middlewares.GetUser(ctx)
	if user == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	summary, err := c.service.Describe(ctx, user)
	if err != nil {
		// Decrypt and provider failures alike: the cause stays in the log.
		log.Error("describe self failed", logger.UserID(user.ID), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, toMeResponse(summary))
}

func toMeResponse(s *linker.ProfileSummary) dto.MeResponse {
	return dto.MeResponse{
		ID:       s.ID,
		Social:   toMeProfile(s.Social),
		Scrobble: toMeProfile(s.Scrobble),
	}
}

func toMeProfile(p *provider.Profile) *dto.MeProfile {
	if p == nil {
		return nil
	}
	return &dto.MeProfile{
		ID:        p.ID,
		Name:      p.DisplayName,
		Handle:    p.Handle,
		AvatarURL: p.AvatarURL,
	}
}
