// Package scrobble talks to the music-scrobbling provider. Its auth model is
// a one-shot token exchanged server-side for a long-lived session key; every
// call carries an api_sig (md5 over the sorted params plus the shared
// secret).
package scrobble

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/soundfolio/accounts/internal/metrics"
	"github.com/soundfolio/accounts/internal/provider"
)

// ErrTokenRejected marks exchange failures the provider attributes to the
// caller's token (invalid, unauthorized, or expired). Everything else is a
// provider fault.
var ErrTokenRejected = errors.New("scrobble: token rejected by provider")

// Provider error codes that mean the one-time token, not our service, is at
// fault.
const (
	codeInvalidParams     = 4
	codeTokenUnauthorized = 14
	codeTokenExpired      = 15
)

// Config carries API credentials and the API root URL (configurable for
// tests).
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string

	// Timeout bounds every provider call. Defaults to 10s.
	Timeout time.Duration
}

type Session struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
}

func New(cfg Config) *Session {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://ws.audioscrobbler.com/2.0/"
	}
	return &Session{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: timeout},
	}
}

// sign computes api_sig: md5 of the params concatenated in key order plus the
// shared secret. The "format" param is excluded by the provider's rules.
func (s *Session) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "format" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	b.WriteString(s.apiSecret)
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

type apiError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (s *Session) call(ctx context.Context, method string, params map[string]string, out any) error {
	start := time.Now()
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues("scrobble", method).Observe(time.Since(start).Seconds())
	}()

	params["method"] = method
	params["api_key"] = s.apiKey
	params["api_sig"] = s.sign(params)
	params["format"] = "json"

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(q.Encode()))
	if err != nil {
		return fmt.Errorf("scrobble: %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("scrobble: %s: %w", method, err)
	}
	defer resp.Body.Close()

	// The provider reports failures through its own error envelope, with or
	// without an HTTP error status.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("scrobble: %s decode: %w", method, err)
	}
	var perr apiError
	if json.Unmarshal(raw, &perr) == nil && perr.Code != 0 {
		switch perr.Code {
		case codeInvalidParams, codeTokenUnauthorized, codeTokenExpired:
			return fmt.Errorf("%w: code %d: %s", ErrTokenRejected, perr.Code, perr.Message)
		default:
			return fmt.Errorf("scrobble: %s: provider error %d: %s", method, perr.Code, perr.Message)
		}
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("scrobble: %s: http %d", method, resp.StatusCode)
	}
	return json.Unmarshal(raw, out)
}

type sessionResponse struct {
	Session struct {
		Name string `json:"name"`
		Key  string `json:"key"`
	} `json:"session"`
}

// ExchangeSession trades the client's one-time token for a session key. The
// provider validates the token fully server-side, so there is no local
// pending state for this flow.
func (s *Session) ExchangeSession(ctx context.Context, oneTimeToken string) (*provider.ScrobbleSession, error) {
	var sr sessionResponse
	if err := s.call(ctx, "auth.getSession", map[string]string{"token": oneTimeToken}, &sr); err != nil {
		return nil, err
	}
	if sr.Session.Key == "" {
		return nil, errors.New("scrobble: auth.getSession: empty session key")
	}
	return &provider.ScrobbleSession{
		SessionKey:  sr.Session.Key,
		DisplayName: sr.Session.Name,
	}, nil
}

type userInfoResponse struct {
	User struct {
		Name     string `json:"name"`
		RealName string `json:"realname"`
		Image    []struct {
			Size string `json:"size"`
			URL  string `json:"#text"`
		} `json:"image"`
	} `json:"user"`
}

// FetchProfile returns the user behind a decrypted session key. The image
// list is size-ordered; the last entry is the largest.
func (s *Session) FetchProfile(ctx context.Context, sessionKey string) (*provider.Profile, error) {
	var ur userInfoResponse
	if err := s.call(ctx, "user.getInfo", map[string]string{"sk": sessionKey}, &ur); err != nil {
		return nil, err
	}
	avatar := ""
	if n := len(ur.User.Image); n > 0 {
		avatar = ur.User.Image[n-1].URL
	}
	return &provider.Profile{
		Handle:      ur.User.Name,
		DisplayName: ur.User.RealName,
		AvatarURL:   avatar,
	}, nil
}
