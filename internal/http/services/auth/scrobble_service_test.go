package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundfolio/accounts/internal/provider"
	"github.com/soundfolio/accounts/internal/provider/scrobble"
	"github.com/soundfolio/accounts/internal/store/core"
	"github.com/soundfolio/accounts/internal/store/memory"
)

type fakeScrobbleProvider struct {
	session *provider.ScrobbleSession
	err     error

	calls    int
	gotToken string
}

func (f *fakeScrobbleProvider) ExchangeSession(_ context.Context, oneTimeToken string) (*provider.ScrobbleSession, error) {
	f.calls++
	f.gotToken = oneTimeToken
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func seededUser(t *testing.T, repo *memory.Repo) *core.User {
	t.Helper()
	u := &core.User{
		ID:     "user-1",
		Social: &core.SocialAccount{ProviderID: "12345", AccessToken: "enc", AccessSecret: "enc"},
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestScrobbleLink_MissingToken(t *testing.T) {
	p := &fakeScrobbleProvider{}
	repo := memory.New()
	svc := NewScrobbleLink(p, newServiceLinker(t, repo))

	_, err := svc.Link(context.Background(), seededUser(t, repo), "   ")
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Zero(t, p.calls)
}

func TestScrobbleLink_TokenRejected(t *testing.T) {
	p := &fakeScrobbleProvider{err: scrobble.ErrTokenRejected}
	repo := memory.New()
	svc := NewScrobbleLink(p, newServiceLinker(t, repo))

	_, err := svc.Link(context.Background(), seededUser(t, repo), "expired-token")
	assert.ErrorIs(t, err, ErrTokenRejected)
}

func TestScrobbleLink_ProviderFault(t *testing.T) {
	p := &fakeScrobbleProvider{err: context.DeadlineExceeded}
	repo := memory.New()
	svc := NewScrobbleLink(p, newServiceLinker(t, repo))

	_, err := svc.Link(context.Background(), seededUser(t, repo), "tok")
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestScrobbleLink_SuccessPersistsDetached(t *testing.T) {
	p := &fakeScrobbleProvider{session: &provider.ScrobbleSession{SessionKey: "sk-plain", DisplayName: "listener"}}
	repo := memory.New()
	svc := NewScrobbleLink(p, newServiceLinker(t, repo))
	u := seededUser(t, repo)

	res, err := svc.Link(context.Background(), u, "one-time")
	require.NoError(t, err)
	assert.Equal(t, "listener", res.DisplayName)
	assert.Equal(t, "one-time", p.gotToken)

	// Persistence happens off the request path; poll for it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		stored, err := repo.FindByID(context.Background(), u.ID)
		require.NoError(t, err)
		if stored.Scrobble != nil {
			assert.Equal(t, "listener", stored.Scrobble.DisplayName)
			assert.NotEqual(t, "sk-plain", stored.Scrobble.SessionKey, "session key must be stored encrypted")
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("scrobble account was never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
