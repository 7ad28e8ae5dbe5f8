package auth

// MeProfile is one provider's view of the user, fetched live.
type MeProfile struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Handle    string `json:"user"`
	AvatarURL string `json:"profilePicture"`
}

// MeResponse is the response for GET /v1/auth/me. Scrobble is null until a
// scrobble account is linked.
type MeResponse struct {
	ID       string     `json:"id"`
	Social   *MeProfile `json:"social"`
	Scrobble *MeProfile `json:"scrobble"`
}
