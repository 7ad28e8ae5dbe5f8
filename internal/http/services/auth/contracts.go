package auth

import (
	"context"
	"errors"

	"github.com/soundfolio/accounts/internal/linker"
	"github.com/soundfolio/accounts/internal/provider"
	"github.com/soundfolio/accounts/internal/provider/social"
	"github.com/soundfolio/accounts/internal/store/core"
)

// SocialLoginService handles both legs of the social login flow.
type SocialLoginService interface {
	// Start obtains a provider request token and returns the consent URL
	// plus the handshake id the client must echo back on callback.
	Start(ctx context.Context) (*StartResult, error)

	// Callback consumes the handshake and exchanges the verifier for a
	// local user plus a bearer credential.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}

// ScrobbleLinkService exchanges a scrobble one-time token and attaches the
// resulting session to the authenticated user.
type ScrobbleLinkService interface {
	Link(ctx context.Context, user *core.User, oneTimeToken string) (*LinkResult, error)
}

// MeService assembles the live profile summary.
type MeService interface {
	Describe(ctx context.Context, user *core.User) (*linker.ProfileSummary, error)
}

// StartResult contains the consent URL for the client to open.
type StartResult struct {
	HandshakeID  string
	AuthorizeURL string
}

// CallbackRequest carries the provider callback parameters.
type CallbackRequest struct {
	OAuthToken    string
	OAuthVerifier string
	HandshakeID   string
}

// CallbackResult is a resolved login.
type CallbackResult struct {
	UserID     string
	Credential string
	IsNewUser  bool
}

// LinkResult acknowledges a scrobble link.
type LinkResult struct {
	DisplayName string
}

// Errors returned by the services, switched in the controllers.
var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrInvalidHandshake = errors.New("unknown or already used handshake")
	ErrTokenRejected    = errors.New("provider rejected the token")
	ErrProviderFailure  = errors.New("provider request failed")
)

// SocialProvider is the slice of the social provider session used here.
type SocialProvider interface {
	StartHandshake(ctx context.Context) (*social.StartResult, error)
	CompleteHandshake(ctx context.Context, returnedToken, requestSecret, verifier string) (*provider.Identity, error)
}

// ScrobbleProvider is the slice of the scrobble provider session used here.
type ScrobbleProvider interface {
	ExchangeSession(ctx context.Context, oneTimeToken string) (*provider.ScrobbleSession, error)
}
