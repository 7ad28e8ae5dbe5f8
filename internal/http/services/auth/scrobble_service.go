package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/soundfolio/accounts/internal/linker"
	"github.com/soundfolio/accounts/internal/observability/logger"
	"github.com/soundfolio/accounts/internal/provider/scrobble"
	"github.com/soundfolio/accounts/internal/store/core"
)

// ScrobbleLink implements ScrobbleLinkService. The session exchange happens
// on the request path; persistence is detached so the client is not held up
// by storage.
type ScrobbleLink struct {
	provider ScrobbleProvider
	linker   *linker.Linker
}

func NewScrobbleLink(provider ScrobbleProvider, lk *linker.Linker) *ScrobbleLink {
	return &ScrobbleLink{provider: provider, linker: lk}
}

func (s *ScrobbleLink) Link(ctx context.Context, user *core.User, oneTimeToken string) (*LinkResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ScrobbleLink.Link"))

	if strings.TrimSpace(oneTimeToken) == "" {
		return nil, ErrMissingFields
	}

	sess, err := s.provider.ExchangeSession(ctx, oneTimeToken)
	if err != nil {
		if errors.Is(err, scrobble.ErrTokenRejected) {
			log.Warn("one-time token rejected", logger.Provider("scrobble"), logger.UserID(user.ID))
			return nil, ErrTokenRejected
		}
		log.Error("session exchange failed", logger.Provider("scrobble"), logger.Err(err))
		return nil, ErrProviderFailure
	}

	s.linker.AttachScrobbleDetached(user, sess.SessionKey, sess.DisplayName)

	log.Debug("scrobble link accepted", logger.UserID(user.ID))

	return &LinkResult{DisplayName: sess.DisplayName}, nil
}
