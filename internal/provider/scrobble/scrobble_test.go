package scrobble

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
)

const (
	testAPIKey    = "test-api-key"
	testAPISecret = "test-api-secret"
)

// verifySig recomputes the signature the same way the provider would.
func verifySig(t *testing.T, r *http.Request) {
	t.Helper()
	if err := r.ParseForm(); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	got := r.PostForm.Get("api_sig")

	keys := make([]string, 0, len(r.PostForm))
	for k := range r.PostForm {
		if k == "api_sig" || k == "format" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(r.PostForm.Get(k))
	}
	b.WriteString(testAPISecret)
	sum := md5.Sum([]byte(b.String()))
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("api_sig mismatch: got %q want %q", got, want)
	}
}

func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verifySig(t, r)
		w.Header().Set("Content-Type", "application/json")

		switch r.PostForm.Get("method") {
		case "auth.getSession":
			switch r.PostForm.Get("token") {
			case "good-token":
				_, _ = w.Write([]byte(`{"session":{"name":"musicfan","key":"session-key-1","subscriber":0}}`))
			case "expired-token":
				_, _ = w.Write([]byte(`{"error":15,"message":"This token has expired"}`))
			default:
				_, _ = w.Write([]byte(`{"error":4,"message":"Invalid authentication token supplied"}`))
			}
		case "user.getInfo":
			if r.PostForm.Get("sk") != "session-key-1" {
				_, _ = w.Write([]byte(`{"error":9,"message":"Invalid session key"}`))
				return
			}
			_, _ = w.Write([]byte(`{"user":{"name":"musicfan","realname":"Music Fan","image":[
				{"size":"small","#text":"https://img.example/s.png"},
				{"size":"medium","#text":"https://img.example/m.png"},
				{"size":"extralarge","#text":"https://img.example/xl.png"}
			]}}`))
		default:
			_, _ = w.Write([]byte(`{"error":3,"message":"Invalid method"}`))
		}
	}))
}

func newTestSession(srv *httptest.Server) *Session {
	return New(Config{APIKey: testAPIKey, APISecret: testAPISecret, BaseURL: srv.URL})
}

func TestExchangeSession(t *testing.T) {
	srv := fakeProvider(t)
	defer srv.Close()
	s := newTestSession(srv)

	sess, err := s.ExchangeSession(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("ExchangeSession err: %v", err)
	}
	if sess.SessionKey != "session-key-1" || sess.DisplayName != "musicfan" {
		t.Fatalf("session mismatch: %+v", sess)
	}
}

func TestExchangeSession_TokenRejected(t *testing.T) {
	srv := fakeProvider(t)
	defer srv.Close()
	s := newTestSession(srv)

	for _, token := range []string{"expired-token", "bogus"} {
		_, err := s.ExchangeSession(context.Background(), token)
		if !errors.Is(err, ErrTokenRejected) {
			t.Fatalf("token %q: expected ErrTokenRejected, got %v", token, err)
		}
	}
}

func TestExchangeSession_ProviderFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":11,"message":"Service offline"}`))
	}))
	defer srv.Close()
	s := newTestSession(srv)

	_, err := s.ExchangeSession(context.Background(), "good-token")
	if err == nil || errors.Is(err, ErrTokenRejected) {
		t.Fatalf("expected provider fault, got %v", err)
	}
}

func TestFetchProfile_PicksLargestAvatar(t *testing.T) {
	srv := fakeProvider(t)
	defer srv.Close()
	s := newTestSession(srv)

	p, err := s.FetchProfile(context.Background(), "session-key-1")
	if err != nil {
		t.Fatalf("FetchProfile err: %v", err)
	}
	if p.AvatarURL != "https://img.example/xl.png" {
		t.Fatalf("expected largest avatar variant, got %q", p.AvatarURL)
	}
	if p.Handle != "musicfan" || p.DisplayName != "Music Fan" {
		t.Fatalf("profile mismatch: %+v", p)
	}
}
