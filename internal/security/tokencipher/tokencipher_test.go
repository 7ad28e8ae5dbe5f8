package tokencipher

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func testKey(seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c, err := New("k1", map[string]string{"k1": testKey(1)})
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	msg := "1234567890-oauth-token ✓"
	ct, err := c.Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	if strings.Contains(ct, msg) {
		t.Fatalf("ciphertext contains plaintext")
	}
	pt, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if pt != msg {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	c1, _ := New("k1", map[string]string{"k1": testKey(1)})
	c2, _ := New("k1", map[string]string{"k1": testKey(100)})

	ct, err := c1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	if _, err := c2.Decrypt(ct); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt, got %v", err)
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	c, _ := New("k1", map[string]string{"k1": testKey(7)})
	ct, err := c.Encrypt("top secret")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	parts := strings.Split(ct, "|")
	if len(parts) != 3 {
		t.Fatalf("unexpected ct format: %q", ct)
	}
	bs, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatal(err)
	}
	bs[0] ^= 0x01
	parts[2] = base64.StdEncoding.EncodeToString(bs)

	if _, err := c.Decrypt(strings.Join(parts, "|")); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt, got %v", err)
	}
}

func TestDecrypt_MalformedInput(t *testing.T) {
	c, _ := New("k1", map[string]string{"k1": testKey(3)})
	for _, in := range []string{"", "garbage", "k1|only-two", "k9|AAAA|AAAA", "k1|!!!|AAAA"} {
		if _, err := c.Decrypt(in); !errors.Is(err, ErrDecrypt) {
			t.Fatalf("input %q: expected ErrDecrypt, got %v", in, err)
		}
	}
}

func TestDecrypt_RotatedKeyStillReadable(t *testing.T) {
	old, _ := New("2023", map[string]string{"2023": testKey(9)})
	ct, err := old.Encrypt("legacy credential")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}

	// New keyring with a fresh active key keeps the old one for reads.
	rotated, err := New("2024", map[string]string{
		"2023": testKey(9),
		"2024": testKey(40),
	})
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	pt, err := rotated.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if pt != "legacy credential" {
		t.Fatalf("plaintext mismatch: %q", pt)
	}
	// New writes use the active key id.
	ct2, _ := rotated.Encrypt("fresh")
	if !strings.HasPrefix(ct2, "2024|") {
		t.Fatalf("expected active key id prefix, got %q", ct2)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("k1", nil); err == nil {
		t.Fatal("expected error for empty keyring")
	}
	if _, err := New("missing", map[string]string{"k1": testKey(1)}); err == nil {
		t.Fatal("expected error for active key not in keyring")
	}
	if _, err := New("k1", map[string]string{"k1": "too-short"}); err == nil {
		t.Fatal("expected error for bad key material")
	}
	if _, err := New("a|b", map[string]string{"a|b": testKey(1)}); err == nil {
		t.Fatal("expected error for separator in key id")
	}
}
