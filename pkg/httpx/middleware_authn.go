package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tasks/pkg/slogx"
)

// Authenticator resolves a bearer token to a username.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// AuthnMiddleware rejects requests without a valid bearer access token and
// stores the token subject in the request context.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				WriteBearerError(w)
				return
			}

			username, err := a.Authenticate(ctx, raw)
			if err != nil {
				log.Warn("bearer authentication failed", "err", err)
				WriteBearerError(w)
				return
			}

			ctx = ContextWithUsername(ctx, username)
			ctx = slogx.With(ctx, "username", username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WriteBearerError writes the single opaque 401 used for every token failure.
func WriteBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
}
