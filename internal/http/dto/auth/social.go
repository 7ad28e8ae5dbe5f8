package auth

// SocialStartResponse is the response for GET /v1/auth/social/start.
type SocialStartResponse struct {
	URL         string `json:"url"`
	HandshakeID string `json:"handshakeId"`
}

// SocialCallbackRequest is the body for POST /v1/auth/social/callback.
type SocialCallbackRequest struct {
	OAuthToken    string `json:"oauthToken"`
	OAuthVerifier string `json:"oauthVerifier"`
	HandshakeID   string `json:"handshakeId"`
}

// SocialCallbackResponse carries the issued bearer credential.
type SocialCallbackResponse struct {
	Token string `json:"token"`
}
