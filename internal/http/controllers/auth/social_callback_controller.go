package auth

import (
	"net/http"

	dto "github.com/soundfolio/accounts/internal/http/dto/auth"
	httperrors "github.com/soundfolio/accounts/internal/http/errors"
	"github.com/soundfolio/accounts/internal/http/helpers"
	svc "github.com/soundfolio/accounts/internal/http/services/auth"
	"github.com/soundfolio/accounts/internal/observability/logger"
)

// SocialCallbackController handles the second leg of social login.
type SocialCallbackController struct {
	service svc.SocialLoginService
}

func NewSocialCallbackController(service svc.SocialLoginService) *SocialCallbackController {
	return &SocialCallbackController{service: service}
}

// Callback handles POST /v1/auth/social/callback
func (c *SocialCallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SocialCallbackController.Callback"))

	var body dto.SocialCallbackRequest
	if !helpers.ReadJSON(w, r, &body) {
		return
	}

	result, err := c.service.Callback(ctx, svc.CallbackRequest{
		OAuthToken:    body.OAuthToken,
		OAuthVerifier: body.OAuthVerifier,
		HandshakeID:   body.HandshakeID,
	})
	if err != nil {
		switch err {
		case svc.ErrMissingFields:
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("oauthToken, oauthVerifier and handshakeId are required"))
		case svc.ErrInvalidHandshake:
			httperrors.WriteError(w, httperrors.ErrInvalidHandshake)
		default:
			log.Error("social callback failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	helpers.WriteJSON(w, http.StatusOK, dto.SocialCallbackResponse{Token: result.Credential})
}
