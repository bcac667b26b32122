package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_token"

// CookieConfig holds cookie delivery settings.
type CookieConfig struct {
	Domain string // Empty string = current host only
	Secure bool   // HTTPS only; on in production
}

// SetSessionCookie delivers a session token to the client. HttpOnly keeps it
// away from scripts; SameSite=Strict is the CSRF defense for this API.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, config CookieConfig) {
	maxAge := int(ttl.Seconds())
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  time.Now().Add(ttl),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	http.SetCookie(w, cookie)
}

// ClearSessionCookie removes the session cookie from the client. Called on
// logout and whenever a presented token fails validation.
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1, // Negative MaxAge deletes the cookie
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	http.SetCookie(w, cookie)
}

// GetSessionCookie retrieves the session token from the request, if present.
func GetSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
