package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueVerify_RoundTrip(t *testing.T) {
	j, err := NewJWT(testSecret, "accounts-test", time.Hour)
	if err != nil {
		t.Fatalf("NewJWT err: %v", err)
	}
	cred, err := j.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}
	uid, err := j.Verify(cred)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	if uid != "user-1" {
		t.Fatalf("subject mismatch: %q", uid)
	}
}

func TestVerify_RejectsTamperAndWrongKey(t *testing.T) {
	j, _ := NewJWT(testSecret, "accounts-test", time.Hour)
	other, _ := NewJWT([]byte(strings.Repeat("x", 32)), "accounts-test", time.Hour)

	cred, _ := j.Issue("user-1")

	if _, err := other.Verify(cred); !errors.Is(err, ErrInvalid) {
		t.Fatalf("wrong key: expected ErrInvalid, got %v", err)
	}
	if _, err := j.Verify(cred + "x"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("tampered: expected ErrInvalid, got %v", err)
	}
	if _, err := j.Verify("not-a-jwt"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("garbage: expected ErrInvalid, got %v", err)
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	j, _ := NewJWT(testSecret, "accounts-test", time.Millisecond)
	cred, _ := j.Issue("user-1")
	time.Sleep(5 * time.Millisecond)
	if _, err := j.Verify(cred); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expired: expected ErrInvalid, got %v", err)
	}
}

func TestNewJWT_RejectsShortSecret(t *testing.T) {
	if _, err := NewJWT([]byte("short"), "accounts-test", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}
