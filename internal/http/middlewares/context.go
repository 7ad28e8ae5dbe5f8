package middlewares

import (
	"context"

	"github.com/soundfolio/accounts/internal/store/core"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyUser
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID returns the request id injected by WithRequestID, or "".
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID).(string)
	return rid
}

// WithUser injects the authenticated user. Exposed for handler tests.
func WithUser(ctx context.Context, u *core.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// GetUser returns the authenticated user injected by RequireAuth, or nil.
func GetUser(ctx context.Context) *core.User {
	u, _ := ctx.Value(ctxKeyUser).(*core.User)
	return u
}
