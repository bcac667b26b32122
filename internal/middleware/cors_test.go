package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS_AllowedOrigin(t *testing.T) {
	config := DefaultCORSConfig([]string{"https://app.example.com"})
	handler := CORS(config)(passHandler())

	req := httptest.NewRequest("GET", "/providers", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORS_UnknownOriginGetsNoHeaders(t *testing.T) {
	config := DefaultCORSConfig([]string{"https://app.example.com"})
	handler := CORS(config)(passHandler())

	req := httptest.NewRequest("GET", "/providers", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	config := DefaultCORSConfig([]string{"https://app.example.com"})
	reached := false
	handler := CORS(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest("OPTIONS", "/providers", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.False(t, reached)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}
