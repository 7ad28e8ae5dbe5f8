// Package social implements the three-legged OAuth 1.0a flow against the
// social provider: request token, user consent redirect, verifier exchange,
// and authenticated profile fetch.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/soundfolio/accounts/internal/handshake"
	"github.com/soundfolio/accounts/internal/metrics"
	"github.com/soundfolio/accounts/internal/provider"
)

// avatarSmallSuffix is the provider's small-variant marker in avatar URLs.
// Stripping it yields the full-size image.
const avatarSmallSuffix = "_normal"

// Config carries the consumer credentials and provider endpoints. Endpoints
// are configurable so tests can point at a local server.
type Config struct {
	ConsumerKey     string
	ConsumerSecret  string
	CallbackURL     string
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
	ProfileURL      string

	// Timeout bounds every provider call. Defaults to 10s.
	Timeout time.Duration
}

// Session drives the provider-side steps of the handshake.
type Session struct {
	oauth      *oauth1.Config
	http       *http.Client
	profileURL string
}

// StartResult is the outcome of the request-token step. RequestSecret stays
// server-side (handshake store); ID and AuthorizeURL go to the client.
type StartResult struct {
	ID            string
	AuthorizeURL  string
	RequestSecret string
}

func New(cfg Config) *Session {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.RequestTokenURL == "" {
		cfg.RequestTokenURL = "https://api.twitter.com/oauth/request_token"
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = "https://api.twitter.com/oauth/authenticate"
	}
	if cfg.AccessTokenURL == "" {
		cfg.AccessTokenURL = "https://api.twitter.com/oauth/access_token"
	}
	if cfg.ProfileURL == "" {
		cfg.ProfileURL = "https://api.twitter.com/1.1/account/verify_credentials.json"
	}
	hc := &http.Client{Timeout: timeout}
	return &Session{
		oauth: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			CallbackURL:    cfg.CallbackURL,
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: cfg.RequestTokenURL,
				AuthorizeURL:    cfg.AuthorizeURL,
				AccessTokenURL:  cfg.AccessTokenURL,
			},
			HTTPClient: hc,
		},
		http:       hc,
		profileURL: cfg.ProfileURL,
	}
}

func observe(op string, start time.Time) {
	metrics.ProviderRequestDuration.WithLabelValues("social", op).Observe(time.Since(start).Seconds())
}

// StartHandshake obtains a request token from the provider and mints the
// opaque handshake id the client must echo back on the callback.
func (s *Session) StartHandshake(ctx context.Context) (*StartResult, error) {
	defer observe("request_token", time.Now())
	requestToken, requestSecret, err := s.oauth.RequestToken()
	if err != nil {
		return nil, fmt.Errorf("social: request token: %w", err)
	}
	authURL, err := s.oauth.AuthorizationURL(requestToken)
	if err != nil {
		return nil, fmt.Errorf("social: authorization url: %w", err)
	}
	id, err := handshake.NewID()
	if err != nil {
		return nil, fmt.Errorf("social: handshake id: %w", err)
	}
	return &StartResult{
		ID:            id,
		AuthorizeURL:  authURL.String(),
		RequestSecret: requestSecret,
	}, nil
}

// CompleteHandshake exchanges the callback token, stored secret and verifier
// for the long-lived access token pair, then asks the provider who the user
// is. The caller has already consumed the handshake entry; a failure here
// never restores it.
func (s *Session) CompleteHandshake(ctx context.Context, returnedToken, requestSecret, verifier string) (*provider.Identity, error) {
	start := time.Now()
	accessToken, accessSecret, err := s.oauth.AccessToken(returnedToken, requestSecret, verifier)
	observe("access_token", start)
	if err != nil {
		return nil, fmt.Errorf("social: access token exchange: %w", err)
	}
	p, err := s.FetchProfile(ctx, accessToken, accessSecret)
	if err != nil {
		return nil, err
	}
	return &provider.Identity{
		ProviderID:   p.ID,
		AccessToken:  accessToken,
		AccessSecret: accessSecret,
	}, nil
}

// profileResponse mirrors the provider's verify-credentials payload.
type profileResponse struct {
	IDStr           string `json:"id_str"`
	Name            string `json:"name"`
	ScreenName      string `json:"screen_name"`
	ProfileImageURL string `json:"profile_image_url_https"`
}

// FetchProfile makes an authenticated verify-credentials call with a
// decrypted token pair.
func (s *Session) FetchProfile(ctx context.Context, accessToken, accessSecret string) (*provider.Profile, error) {
	defer observe("profile", time.Now())
	ctx = context.WithValue(ctx, oauth1.HTTPClient, s.http)
	client := s.oauth.Client(ctx, oauth1.NewToken(accessToken, accessSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("social: profile request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("social: profile fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("social: profile fetch: http %d", resp.StatusCode)
	}

	var pr profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("social: profile decode: %w", err)
	}
	return &provider.Profile{
		ID:          pr.IDStr,
		DisplayName: pr.Name,
		Handle:      pr.ScreenName,
		AvatarURL:   strings.Replace(pr.ProfileImageURL, avatarSmallSuffix, "", 1),
	}, nil
}
