// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/atinyakov/GophNotes/internal/models"
)

type ctxKey string

const (
	userKey    ctxKey = "user"
	sessionKey ctxKey = "session"
)

// TokenValidator resolves bearer tokens into sessions.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*models.Session, error)
}

// TokenAuth is a middleware that enforces bearer-token authentication.
//
// It reads "Authorization: Bearer <token>", validates the token and stores
// the session owner in the request context, so it can be used downstream as
// the authenticated user ID. Missing, unknown or expired tokens get 401.
func TokenAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			sess, err := v.Validate(r.Context(), token)
			if errors.Is(err, models.ErrUnauthorized) {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, sess.UserID)
			ctx = context.WithValue(ctx, sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// GetSessionFromContext returns the session stored by TokenAuth, or nil.
func GetSessionFromContext(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey).(*models.Session)
	return s
}
