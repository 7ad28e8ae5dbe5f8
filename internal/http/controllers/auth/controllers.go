// Package auth groups the auth HTTP controllers.
package auth

import (
	svc "github.com/soundfolio/accounts/internal/http/services/auth"
)

// Controllers is the aggregator for the auth domain.
type Controllers struct {
	SocialStart    *SocialStartController
	SocialCallback *SocialCallbackController
	Scrobble       *ScrobbleController
	Me             *MeController
}

func NewControllers(social svc.SocialLoginService, scrobble svc.ScrobbleLinkService, me svc.MeService) *Controllers {
	return &Controllers{
		SocialStart:    NewSocialStartController(social),
		SocialCallback: NewSocialCallbackController(social),
		Scrobble:       NewScrobbleController(scrobble),
		Me:             NewMeController(me),
	}
}
