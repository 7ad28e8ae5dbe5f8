package auth

import (
	"net/http"

	dto "github.com/soundfolio/accounts/internal/http/dto/auth"
	httperrors "github.com/soundfolio/accounts/internal/http/errors"
	"github.com/soundfolio/accounts/internal/http/helpers"
	svc "github.com/soundfolio/accounts/internal/http/services/auth"
	"github.com/soundfolio/accounts/internal/observability/logger"
)

// SocialStartController handles the first leg of social login.
type SocialStartController struct {
	service svc.SocialLoginService
}

func NewSocialStartController(service svc.SocialLoginService) *SocialStartController {
	return &SocialStartController{service: service}
}

// Start handles GET /v1/auth/social/start
func (c *SocialStartController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SocialStartController.Start"))

	result, err := c.service.Start(ctx)
	if err != nil {
		log.Error("social start failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	helpers.WriteJSON(w, http.StatusOK, dto.SocialStartResponse{
		URL:         result.AuthorizeURL,
		HandshakeID: result.HandshakeID,
	})
}
