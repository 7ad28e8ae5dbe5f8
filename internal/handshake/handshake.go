// Package handshake holds the server-side secrets of in-flight three-legged
// OAuth handshakes between the start redirect and the provider callback.
package handshake

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned by Consume for ids that were never recorded, were
// already consumed, or expired. The HTTP layer maps it to a client error.
var ErrNotFound = errors.New("handshake: not found")

// Store keeps request secrets keyed by an opaque handshake id. Entries are
// single-use and expire after the configured TTL, so abandoned handshakes
// cannot accumulate.
type Store interface {
	// Record stores the provider-issued request secret under id.
	Record(ctx context.Context, id, secret string) error

	// Consume atomically removes and returns the secret for id. A second
	// Consume for the same id returns ErrNotFound, also under concurrent
	// callers.
	Consume(ctx context.Context, id string) (string, error)
}

// DefaultTTL bounds how long a handshake may stay open. Providers expire
// their request tokens in a similar window anyway.
const DefaultTTL = 10 * time.Minute

// NewID returns a 16-byte cryptographically random id, hex encoded. The id
// travels through the client, so it must be unguessable while the handshake
// window is open.
func NewID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
