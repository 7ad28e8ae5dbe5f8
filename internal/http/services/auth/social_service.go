package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/soundfolio/accounts/internal/handshake"
	"github.com/soundfolio/accounts/internal/linker"
	"github.com/soundfolio/accounts/internal/metrics"
	"github.com/soundfolio/accounts/internal/observability/logger"
)

// SocialLogin implements SocialLoginService over the provider session, the
// handshake store, and the linker.
type SocialLogin struct {
	provider   SocialProvider
	handshakes handshake.Store
	linker     *linker.Linker
}

func NewSocialLogin(provider SocialProvider, handshakes handshake.Store, lk *linker.Linker) *SocialLogin {
	return &SocialLogin{provider: provider, handshakes: handshakes, linker: lk}
}

func (s *SocialLogin) Start(ctx context.Context) (*StartResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("SocialLogin.Start"))

	res, err := s.provider.StartHandshake(ctx)
	if err != nil {
		log.Error("request token failed", logger.Provider("social"), logger.Err(err))
		return nil, ErrProviderFailure
	}

	if err := s.handshakes.Record(ctx, res.ID, res.RequestSecret); err != nil {
		log.Error("handshake record failed", logger.HandshakeID(res.ID), logger.Err(err))
		return nil, ErrProviderFailure
	}

	metrics.HandshakesStarted.Inc()
	log.Debug("handshake started", logger.HandshakeID(res.ID))

	return &StartResult{HandshakeID: res.ID, AuthorizeURL: res.AuthorizeURL}, nil
}

func (s *SocialLogin) Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("SocialLogin.Callback"))

	// Field validation comes first: no provider traffic for a request that
	// cannot complete.
	if strings.TrimSpace(req.OAuthToken) == "" ||
		strings.TrimSpace(req.OAuthVerifier) == "" ||
		strings.TrimSpace(req.HandshakeID) == "" {
		return nil, ErrMissingFields
	}

	// Consume before the exchange: the handshake is single-use even when the
	// exchange afterwards fails.
	requestSecret, err := s.handshakes.Consume(ctx, req.HandshakeID)
	if err != nil {
		if errors.Is(err, handshake.ErrNotFound) {
			metrics.HandshakesCompleted.WithLabelValues("invalid_handshake").Inc()
			log.Warn("unknown or reused handshake", logger.HandshakeID(req.HandshakeID))
			return nil, ErrInvalidHandshake
		}
		log.Error("handshake consume failed", logger.HandshakeID(req.HandshakeID), logger.Err(err))
		return nil, err
	}

	identity, err := s.provider.CompleteHandshake(ctx, req.OAuthToken, requestSecret, req.OAuthVerifier)
	if err != nil {
		metrics.HandshakesCompleted.WithLabelValues("provider_error").Inc()
		log.Error("token exchange failed", logger.Provider("social"), logger.Err(err))
		return nil, ErrProviderFailure
	}

	user, isNew, err := s.linker.ResolveOrCreate(ctx, identity)
	if err != nil {
		log.Error("resolve user failed", logger.Err(err))
		return nil, err
	}

	credential, err := s.linker.IssueCredential(user)
	if err != nil {
		log.Error("issue credential failed", logger.UserID(user.ID), logger.Err(err))
		return nil, err
	}

	metrics.HandshakesCompleted.WithLabelValues("ok").Inc()
	log.Debug("social login completed",
		logger.UserID(user.ID),
		logger.Bool("new_user", isNew),
	)

	return &CallbackResult{UserID: user.ID, Credential: credential, IsNewUser: isNew}, nil
}
