package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/soundfolio/accounts/internal/http/errors"
	"github.com/soundfolio/accounts/internal/session"
	"github.com/soundfolio/accounts/internal/store/core"
)

// RequireAuth validates Authorization: Bearer <credential> and loads the
// owning user into the context. Missing or invalid credentials get a 401;
// the credential itself never reaches the log or the response body.
func RequireAuth(verifier session.Verifier, users core.UserRepository) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			userID, err := verifier.Verify(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			u, err := users.FindByID(r.Context(), userID)
			if err != nil {
				// Valid credential for a user that no longer exists.
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
