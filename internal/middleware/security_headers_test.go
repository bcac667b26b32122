package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders_SetOnEveryResponse(t *testing.T) {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: "development"})(passHandler())

	req := httptest.NewRequest("GET", "/providers", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Equal(t, "same-origin", w.Header().Get("Cross-Origin-Opener-Policy"))
}

func TestSecurityHeaders_NoHSTSInDevelopment(t *testing.T) {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: "development"})(passHandler())

	req := httptest.NewRequest("GET", "/providers", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_HSTSInProductionOverTLS(t *testing.T) {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: "production"})(passHandler())

	req := httptest.NewRequest("GET", "/providers", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestSecurityHeaders_NoHSTSOnPlainHTTP(t *testing.T) {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: "production"})(passHandler())

	req := httptest.NewRequest("GET", "/providers", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
