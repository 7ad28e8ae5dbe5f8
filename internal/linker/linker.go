// Package linker ties verified provider identities to local users: lookup or
// creation on first login, credential encryption at rest, session credential
// issuance, and the authenticated profile summary.
package linker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soundfolio/accounts/internal/metrics"
	"github.com/soundfolio/accounts/internal/observability/logger"
	"github.com/soundfolio/accounts/internal/provider"
	"github.com/soundfolio/accounts/internal/security/tokencipher"
	"github.com/soundfolio/accounts/internal/session"
	"github.com/soundfolio/accounts/internal/store/core"
)

// SocialProfiles is the slice of the social provider the linker needs.
type SocialProfiles interface {
	FetchProfile(ctx context.Context, accessToken, accessSecret string) (*provider.Profile, error)
}

// ScrobbleProfiles is the slice of the scrobble provider the linker needs.
type ScrobbleProfiles interface {
	FetchProfile(ctx context.Context, sessionKey string) (*provider.Profile, error)
}

// ProfileSummary is the assembled "who am I" view. Scrobble is nil when no
// scrobble account is linked.
type ProfileSummary struct {
	ID       string
	Social   *provider.Profile
	Scrobble *provider.Profile
}

// Deps wires a Linker.
type Deps struct {
	Users          core.UserRepository
	SocialCipher   *tokencipher.Cipher
	ScrobbleCipher *tokencipher.Cipher
	Social         SocialProfiles
	Scrobble       ScrobbleProfiles
	Sessions       session.Issuer

	// DetachedTimeout bounds fire-and-forget persistence. Defaults to 10s.
	DetachedTimeout time.Duration

	// OnDetachedError is an extra sink for detached persistence failures,
	// on top of the log and metric. Used by tests.
	OnDetachedError func(error)
}

type Linker struct {
	users           core.UserRepository
	socialCipher    *tokencipher.Cipher
	scrobbleCipher  *tokencipher.Cipher
	social          SocialProfiles
	scrobble        ScrobbleProfiles
	sessions        session.Issuer
	detachedTimeout time.Duration
	onDetachedError func(error)
}

func New(d Deps) *Linker {
	timeout := d.DetachedTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Linker{
		users:           d.Users,
		socialCipher:    d.SocialCipher,
		scrobbleCipher:  d.ScrobbleCipher,
		social:          d.Social,
		scrobble:        d.Scrobble,
		sessions:        d.Sessions,
		detachedTimeout: timeout,
		onDetachedError: d.OnDetachedError,
	}
}

// ResolveOrCreate returns the user linked to the verified identity, creating
// one on first login. The identity's plaintext token pair is encrypted here
// and discarded; only ciphertext reaches the repository.
func (l *Linker) ResolveOrCreate(ctx context.Context, id *provider.Identity) (*core.User, bool, error) {
	u, err := l.users.FindBySocialID(ctx, id.ProviderID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, fmt.Errorf("linker: lookup by provider id: %w", err)
	}

	encToken, err := l.socialCipher.Encrypt(id.AccessToken)
	if err != nil {
		return nil, false, fmt.Errorf("linker: encrypt access token: %w", err)
	}
	encSecret, err := l.socialCipher.Encrypt(id.AccessSecret)
	if err != nil {
		return nil, false, fmt.Errorf("linker: encrypt access secret: %w", err)
	}

	u = &core.User{
		ID: uuid.NewString(),
		Social: &core.SocialAccount{
			ProviderID:   id.ProviderID,
			AccessToken:  encToken,
			AccessSecret: encSecret,
		},
	}
	if err := l.users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("linker: create user: %w", err)
	}
	return u, true, nil
}

// IssueCredential asks the session collaborator for a bearer credential bound
// to the user.
func (l *Linker) IssueCredential(u *core.User) (string, error) {
	return l.sessions.Issue(u.ID)
}

// AttachScrobble encrypts the session key and sets or overwrites the user's
// scrobble account.
func (l *Linker) AttachScrobble(ctx context.Context, u *core.User, sessionKey, displayName string) error {
	enc, err := l.scrobbleCipher.Encrypt(sessionKey)
	if err != nil {
		return fmt.Errorf("linker: encrypt session key: %w", err)
	}
	u.Scrobble = &core.ScrobbleAccount{SessionKey: enc, DisplayName: displayName}
	if err := l.users.Save(ctx, u); err != nil {
		return fmt.Errorf("linker: save scrobble account: %w", err)
	}
	return nil
}

// AttachScrobbleDetached runs AttachScrobble off the request path, after the
// response has gone out. Failures cannot reach the client anymore, so they
// are surfaced through the log, the metric, and the optional test hook.
func (l *Linker) AttachScrobbleDetached(u *core.User, sessionKey, displayName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.detachedTimeout)
		defer cancel()
		if err := l.AttachScrobble(ctx, u, sessionKey, displayName); err != nil {
			metrics.DetachedPersistFailures.Inc()
			logger.L().Error("detached scrobble persist failed",
				logger.Component("linker"),
				logger.UserID(u.ID),
				logger.Err(err),
			)
			if l.onDetachedError != nil {
				l.onDetachedError(err)
			}
		}
	}()
}

// DescribeSelf assembles the live profile summary for an authenticated user.
// Decryption or provider failure on either leg aborts the whole call; a
// partial summary is never returned.
func (l *Linker) DescribeSelf(ctx context.Context, u *core.User) (*ProfileSummary, error) {
	if u.Social == nil {
		return nil, errors.New("linker: user has no social account")
	}

	token, err := l.socialCipher.Decrypt(u.Social.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("linker: social access token: %w", err)
	}
	secret, err := l.socialCipher.Decrypt(u.Social.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("linker: social access secret: %w", err)
	}
	socialProfile, err := l.social.FetchProfile(ctx, token, secret)
	if err != nil {
		return nil, fmt.Errorf("linker: social profile: %w", err)
	}
	socialProfile.ID = u.Social.ProviderID

	summary := &ProfileSummary{ID: u.ID, Social: socialProfile}

	if u.Scrobble != nil {
		key, err := l.scrobbleCipher.Decrypt(u.Scrobble.SessionKey)
		if err != nil {
			return nil, fmt.Errorf("linker: scrobble session key: %w", err)
		}
		scrobbleProfile, err := l.scrobble.FetchProfile(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("linker: scrobble profile: %w", err)
		}
		summary.Scrobble = scrobbleProfile
	}
	return summary, nil
}
