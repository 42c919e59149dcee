// Package middleware provides HTTP middlewares for admin authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const tokenKey ctxKey = "adminToken"

// TokenAuthenticator validates admin bearer tokens.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) error
}

// AuthFailureFunc writes the response for a rejected request.
type AuthFailureFunc func(w http.ResponseWriter, r *http.Request, err error)

// AdminAuth is a middleware that only lets requests carrying a live admin
// bearer token through.
//
// The token is read from the "Authorization: Bearer <token>" header. On
// success it is stored in the request context so handlers such as logout can
// reach it; on failure onFail writes the response and next is not called.
func AdminAuth(auth TokenAuthenticator, onFail AuthFailureFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if err := auth.Authenticate(r.Context(), token); err != nil {
				onFail(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the bearer token from the Authorization header.
// Returns an empty string if none was presented.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetTokenFromContext returns the admin token stored by AdminAuth.
// Returns an empty string if not found.
func GetTokenFromContext(ctx context.Context) string {
	val := ctx.Value(tokenKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
