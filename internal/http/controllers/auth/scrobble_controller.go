package auth

import (
	"net/http"

	dto "github.com/soundfolio/accounts/internal/http/dto/auth"
	httperrors "github.com/soundfolio/accounts/internal/http/errors"
	"github.com/soundfolio/accounts/internal/http/helpers"
	"github.com/soundfolio/accounts/internal/http/middlewares"
	svc "github.com/soundfolio/accounts/internal/http/services/auth"
	"github.com/soundfolio/accounts/internal/observability/logger"
)

// ScrobbleController links a scrobble account to the authenticated user.
type ScrobbleController struct {
	service svc.ScrobbleLinkService
}

func NewScrobbleController(service svc.ScrobbleLinkService) *ScrobbleController {
	return &ScrobbleController{service: service}
}

// Link handles POST /v1/auth/scrobble/link
func (c *ScrobbleController) Link(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ScrobbleController.Link"))

	user := middlewares.GetUser(ctx)
	if user == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var body dto.ScrobbleLinkRequest
	if !helpers.ReadJSON(w, r, &body) {
		return
	}

	result, err := c.service.Link(ctx, user, body.Token)
	if err != nil {
		switch err {
		case svc.ErrMissingFields:
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("token is required"))
		case svc.ErrTokenRejected:
			httperrors.WriteError(w, httperrors.ErrTokenRejected)
		default:
			log.Error("scrobble link failed", logger.UserID(user.ID), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ScrobbleLinkResponse{
		User: dto.ScrobbleLinkUser{Name: result.DisplayName},
	})
}
