package httpx

import "context"

type ctxKey string

const (
	CtxKeyUsername ctxKey = "username"
)

// UsernameFromContext returns the authenticated username set by AuthnMiddleware.
func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(CtxKeyUsername).(string)
	return u, ok && u != ""
}

// ContextWithUsername is exported for handler tests that skip the middleware.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, CtxKeyUsername, username)
}
