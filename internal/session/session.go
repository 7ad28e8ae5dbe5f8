// Package session issues and verifies the opaque bearer credential handed to
// clients after a successful login. The rest of the service treats the
// credential as opaque; only this package and the auth middleware know it is
// a JWT.
package session

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrInvalid covers every verification failure: bad signature, expired,
// wrong issuer, malformed.
var ErrInvalid = errors.New("session: invalid credential")

// Issuer is what the linker depends on; it never inspects the credential.
type Issuer interface {
	Issue(userID string) (string, error)
}

// Verifier is what the auth middleware depends on.
type Verifier interface {
	Verify(credential string) (userID string, err error)
}

// JWT implements Issuer and Verifier with HS256.
type JWT struct {
	secret []byte
	iss    string
	ttl    time.Duration
}

func NewJWT(secret []byte, iss string, ttl time.Duration) (*JWT, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session: secret must be at least 32 bytes, got %d", len(secret))
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &JWT{secret: secret, iss: iss, ttl: ttl}, nil
}

func (j *JWT) Issue(userID string) (string, error) {
	now := time.Now().UTC()
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.RegisteredClaims{
		Issuer:    j.iss,
		Subject:   userID,
		IssuedAt:  jwtv5.NewNumericDate(now),
		NotBefore: jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(now.Add(j.ttl)),
	})
	signed, err := tk.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign: %w", err)
	}
	return signed, nil
}

func (j *JWT) Verify(credential string) (string, error) {
	tk, err := jwtv5.ParseWithClaims(credential, &jwtv5.RegisteredClaims{},
		func(t *jwtv5.Token) (any, error) { return j.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(j.iss),
	)
	if err != nil || !tk.Valid {
		return "", ErrInvalid
	}
	claims, ok := tk.Claims.(*jwtv5.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalid
	}
	return claims.Subject, nil
}
