// Package tokencipher encrypts provider credentials for storage. Each provider
// gets its own keyring; stored values carry the key id so keys can be rotated
// without re-encrypting everything up front.
package tokencipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSize = 12 // AES-GCM recommended nonce size (96 bits)
	keyLength = 32 // AES-256
	sep       = "|"
)

// ErrDecrypt is returned when stored ciphertext cannot be recovered: malformed
// encoding, unknown key id, or authentication failure. Callers must treat it
// as fatal to the request, never as "no credential".
var ErrDecrypt = errors.New("tokencipher: decrypt failed")

// Cipher is an AES-256-GCM keyring. Encrypt always uses the active key;
// Decrypt picks the key named by the stored key id.
type Cipher struct {
	active string
	keys   map[string][]byte
}

// New builds a Cipher from encoded keys (base64 or hex, 32 bytes decoded).
// active must name one of the keys.
func New(active string, keys map[string]string) (*Cipher, error) {
	if len(keys) == 0 {
		return nil, errors.New("tokencipher: no keys configured")
	}
	decoded := make(map[string][]byte, len(keys))
	for kid, enc := range keys {
		if strings.Contains(kid, sep) {
			return nil, fmt.Errorf("tokencipher: key id %q must not contain %q", kid, sep)
		}
		k, err := ParseKey(enc)
		if err != nil {
			return nil, fmt.Errorf("tokencipher: key %q: %w", kid, err)
		}
		decoded[kid] = k
	}
	if _, ok := decoded[active]; !ok {
		return nil, fmt.Errorf("tokencipher: active key %q not in keyring", active)
	}
	return &Cipher{active: active, keys: decoded}, nil
}

// ParseKey decodes a key given as std/raw base64 or hex. It must decode to
// exactly 32 bytes.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == keyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) == keyLength {
		return b, nil
	}
	if len(s) == keyLength*2 {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("key must decode to %d bytes (base64 or hex)", keyLength)
}

// Encrypt seals plaintext with the active key and returns
// keyID|base64(nonce)|base64(ciphertext).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aead, err := c.aead(c.active)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("tokencipher: nonce: %w", err)
	}
	ct := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return c.active + sep +
		base64.StdEncoding.EncodeToString(nonce) + sep +
		base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt opens a value produced by Encrypt. Any failure is reported as
// ErrDecrypt; the wrapped detail is for server-side logs only.
func (c *Cipher) Decrypt(stored string) (string, error) {
	parts := strings.Split(stored, sep)
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected keyID|nonce|ciphertext", ErrDecrypt)
	}
	if _, ok := c.keys[parts[0]]; !ok {
		return "", fmt.Errorf("%w: unknown key id %q", ErrDecrypt, parts[0])
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(nonce) != nonceSize {
		return "", fmt.Errorf("%w: bad nonce", ErrDecrypt)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", ErrDecrypt)
	}
	aead, err := c.aead(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%w: auth failure", ErrDecrypt)
	}
	return string(pt), nil
}

func (c *Cipher) aead(kid string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.keys[kid])
	if err != nil {
		return nil, fmt.Errorf("tokencipher: aes: %w", err)
	}
	return cipher.NewGCM(block)
}
