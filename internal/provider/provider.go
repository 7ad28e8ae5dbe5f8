// Package provider defines the normalized shapes returned by the upstream
// identity providers.
package provider

// Identity is the durable outcome of a completed login with the social
// provider. AccessToken and AccessSecret are plaintext here and must be
// encrypted before they leave the request.
type Identity struct {
	ProviderID   string
	AccessToken  string
	AccessSecret string
}

// Profile is live profile data fetched from a provider.
type Profile struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"name"`
	Handle      string `json:"user"`
	AvatarURL   string `json:"profilePicture"`
}

// ScrobbleSession is the outcome of the scrobble provider's token exchange.
// SessionKey is plaintext and must be encrypted before persistence.
type ScrobbleSession struct {
	SessionKey  string
	DisplayName string
}
