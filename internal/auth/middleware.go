package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/jikulumessu/api/internal/models"
	pkghttp "github.com/jikulumessu/api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the authenticated user in context
	UserContextKey contextKey = "user"
)

// Authenticator validates the session cookie on every request and injects
// the resolved user into the request context. A missing, unknown, or expired
// token gets one uniform 401 and the stale cookie is cleared.
func Authenticator(sm *SessionManager, cookieConfig CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetSessionCookie(r)

			user, err := sm.Validate(r.Context(), token)
			if err != nil {
				if errors.Is(err, models.ErrUnavailable) {
					pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
					return
				}
				if token != "" {
					ClearSessionCookie(w, cookieConfig)
				}
				pkghttp.WriteUnauthorized(w, "Authentication failed")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAdmin reports whether the principal may perform privileged actions.
// Policy: a suspended or inactive account loses admin privileges immediately,
// whatever its role says.
func IsAdmin(user *models.User) bool {
	return user != nil && user.IsAdmin()
}

// RequireAdmin gates privileged routes. Must run after Authenticator. The
// 403 carries no information about the target resource.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			pkghttp.WriteUnauthorized(w, "Authentication failed")
			return
		}

		if !IsAdmin(user) {
			pkghttp.WriteForbidden(w, "Insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
