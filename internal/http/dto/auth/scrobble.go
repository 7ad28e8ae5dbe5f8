package auth

// ScrobbleLinkRequest is the body for POST /v1/auth/scrobble/link.
// Token is the provider's one-time auth token, not a session key.
type ScrobbleLinkRequest struct {
	Token string `json:"token"`
}

// ScrobbleLinkResponse acknowledges the link. Only the public display name is
// returned; the session key stays server-side.
type ScrobbleLinkResponse struct {
	User ScrobbleLinkUser `json:"user"`
}

type ScrobbleLinkUser struct {
	Name string `json:"name"`
}
