package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundfolio/accounts/internal/handshake"
	"github.com/soundfolio/accounts/internal/linker"
	"github.com/soundfolio/accounts/internal/provider"
	"github.com/soundfolio/accounts/internal/provider/social"
	"github.com/soundfolio/accounts/internal/security/tokencipher"
	"github.com/soundfolio/accounts/internal/store/memory"
)

type fakeSocialProvider struct {
	startResult *social.StartResult
	startErr    error

	identity    *provider.Identity
	completeErr error

	startCalls    int
	completeCalls int

	gotToken    string
	gotSecret   string
	gotVerifier string
}

func (f *fakeSocialProvider) StartHandshake(context.Context) (*social.StartResult, error) {
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startResult, nil
}

func (f *fakeSocialProvider) CompleteHandshake(_ context.Context, returnedToken, requestSecret, verifier string) (*provider.Identity, error) {
	f.completeCalls++
	f.gotToken, f.gotSecret, f.gotVerifier = returnedToken, requestSecret, verifier
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.identity, nil
}

type staticIssuer struct{}

func (staticIssuer) Issue(userID string) (string, error) { return "cred-" + userID, nil }

func newServiceLinker(t *testing.T, repo *memory.Repo) *linker.Linker {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	cipher, err := tokencipher.New("k1", map[string]string{"k1": base64.StdEncoding.EncodeToString(raw)})
	require.NoError(t, err)
	return linker.New(linker.Deps{
		Users:          repo,
		SocialCipher:   cipher,
		ScrobbleCipher: cipher,
		Sessions:       staticIssuer{},
	})
}

func newSocialLogin(t *testing.T, p *fakeSocialProvider) (*SocialLogin, handshake.Store) {
	t.Helper()
	store := handshake.NewMem(handshake.DefaultTTL)
	return NewSocialLogin(p, store, newServiceLinker(t, memory.New())), store
}

func TestSocialLogin_Start(t *testing.T) {
	p := &fakeSocialProvider{startResult: &social.StartResult{
		ID:            "hs-1",
		AuthorizeURL:  "https://social.example/oauth/authorize?oauth_token=req-tok",
		RequestSecret: "req-secret",
	}}
	svc, store := newSocialLogin(t, p)

	res, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hs-1", res.HandshakeID)
	assert.Equal(t, p.startResult.AuthorizeURL, res.AuthorizeURL)

	// The request secret is recorded under the handshake id.
	secret, err := store.Consume(context.Background(), "hs-1")
	require.NoError(t, err)
	assert.Equal(t, "req-secret", secret)
}

func TestSocialLogin_StartProviderDown(t *testing.T) {
	p := &fakeSocialProvider{startErr: errors.New("connection refused")}
	svc, _ := newSocialLogin(t, p)

	_, err := svc.Start(context.Background())
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestSocialLogin_CallbackMissingFieldsBeforeProvider(t *testing.T) {
	p := &fakeSocialProvider{}
	svc, store := newSocialLogin(t, p)
	require.NoError(t, store.Record(context.Background(), "hs-1", "req-secret"))

	for _, req := range []CallbackRequest{
		{OAuthVerifier: "v", HandshakeID: "hs-1"},
		{OAuthToken: "t", HandshakeID: "hs-1"},
		{OAuthToken: "t", OAuthVerifier: "v"},
		{OAuthToken: "  ", OAuthVerifier: "v", HandshakeID: "hs-1"},
	} {
		_, err := svc.Callback(context.Background(), req)
		assert.ErrorIs(t, err, ErrMissingFields)
	}
	assert.Zero(t, p.completeCalls, "provider must not be contacted for invalid requests")

	// The recorded handshake is untouched by the rejected requests.
	_, err := store.Consume(context.Background(), "hs-1")
	assert.NoError(t, err)
}

func TestSocialLogin_CallbackUnknownHandshake(t *testing.T) {
	p := &fakeSocialProvider{}
	svc, _ := newSocialLogin(t, p)

	_, err := svc.Callback(context.Background(), CallbackRequest{
		OAuthToken: "t", OAuthVerifier: "v", HandshakeID: "nope",
	})
	assert.ErrorIs(t, err, ErrInvalidHandshake)
	assert.Zero(t, p.completeCalls)
}

func TestSocialLogin_CallbackSuccessIsSingleUse(t *testing.T) {
	p := &fakeSocialProvider{identity: &provider.Identity{
		ProviderID: "12345", AccessToken: "at", AccessSecret: "as",
	}}
	svc, store := newSocialLogin(t, p)
	require.NoError(t, store.Record(context.Background(), "hs-1", "req-secret"))

	req := CallbackRequest{OAuthToken: "ret-tok", OAuthVerifier: "ver", HandshakeID: "hs-1"}

	res, err := svc.Callback(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, "cred-"+res.UserID, res.Credential)
	assert.Equal(t, "req-secret", p.gotSecret)
	assert.Equal(t, "ver", p.gotVerifier)

	// Replaying the same callback fails: the handshake was consumed.
	_, err = svc.Callback(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidHandshake)
}

func TestSocialLogin_CallbackFailedExchangeStillConsumes(t *testing.T) {
	p := &fakeSocialProvider{completeErr: errors.New("401 unauthorized")}
	svc, store := newSocialLogin(t, p)
	require.NoError(t, store.Record(context.Background(), "hs-1", "req-secret"))

	req := CallbackRequest{OAuthToken: "t", OAuthVerifier: "v", HandshakeID: "hs-1"}

	_, err := svc.Callback(context.Background(), req)
	assert.ErrorIs(t, err, ErrProviderFailure)

	// The failed exchange does not restore the handshake.
	_, err = svc.Callback(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidHandshake)
	assert.Equal(t, 1, p.completeCalls)
}

func TestSocialLogin_CallbackReturningUser(t *testing.T) {
	p := &fakeSocialProvider{identity: &provider.Identity{
		ProviderID: "12345", AccessToken: "at", AccessSecret: "as",
	}}
	repo := memory.New()
	store := handshake.NewMem(handshake.DefaultTTL)
	svc := NewSocialLogin(p, store, newServiceLinker(t, repo))

	require.NoError(t, store.Record(context.Background(), "hs-1", "s1"))
	first, err := svc.Callback(context.Background(), CallbackRequest{OAuthToken: "t", OAuthVerifier: "v", HandshakeID: "hs-1"})
	require.NoError(t, err)

	require.NoError(t, store.Record(context.Background(), "hs-2", "s2"))
	second, err := svc.Callback(context.Background(), CallbackRequest{OAuthToken: "t", OAuthVerifier: "v", HandshakeID: "hs-2"})
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.False(t, second.IsNewUser)
	assert.Equal(t, 1, repo.Count())
}
