// Package core defines the user model and the repository contract the rest of
// the service programs against.
package core

import "time"

// User is the identity root. A user exists because at least one provider
// identity was verified; there are no passwords here.
type User struct {
	ID        string
	Social    *SocialAccount
	Scrobble  *ScrobbleAccount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SocialAccount links a user to the social provider. AccessToken and
// AccessSecret hold tokencipher output, never plaintext.
type SocialAccount struct {
	ProviderID   string
	AccessToken  string
	AccessSecret string
}

// ScrobbleAccount links a user to the scrobbling provider. SessionKey holds
// tokencipher output, never plaintext.
type ScrobbleAccount struct {
	SessionKey  string
	DisplayName string
}
