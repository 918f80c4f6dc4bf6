// Package middleware provides HTTP middlewares for authentication, request
// correlation and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type ctxKey string

const (
	userKey      ctxKey = "user"
	requestIDKey ctxKey = "request_id"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	ParseToken(raw string) (int64, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer" header
// with 401. Verifier errors matching expired get a distinct message. On
// success the user id is stored in the request context.
func BearerAuth(verifier TokenVerifier, expired error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			userID, err := verifier.ParseToken(strings.TrimSpace(raw))
			if err != nil {
				if expired != nil && errors.Is(err, expired) {
					writeUnauthorized(w, "token expired")
					return
				}
				writeUnauthorized(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user id from the request
// context. ok is false outside BearerAuth.
func GetUserIDFromContext(ctx context.Context) (id int64, ok bool) {
	id, ok = ctx.Value(userKey).(int64)
	return id, ok
}

// WithUserID returns ctx carrying id, as BearerAuth would.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey, id)
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": msg,
	})
}
