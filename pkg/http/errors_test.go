package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteError_Shape(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, 418, "teapot", "short and stout")

	assert.Equal(t, 418, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "teapot", resp.Error)
	assert.Equal(t, "short and stout", resp.Message)
	assert.Empty(t, resp.Details)
}

func TestCommonErrorWriters(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w *httptest.ResponseRecorder)
		wantStatus int
		wantCode   string
	}{
		{"bad request", func(w *httptest.ResponseRecorder) { WriteBadRequest(w, "m") }, 400, "bad_request"},
		{"unauthorized", func(w *httptest.ResponseRecorder) { WriteUnauthorized(w, "m") }, 401, "unauthorized"},
		{"forbidden", func(w *httptest.ResponseRecorder) { WriteForbidden(w, "m") }, 403, "forbidden"},
		{"not found", func(w *httptest.ResponseRecorder) { WriteNotFound(w, "m") }, 404, "not_found"},
		{"conflict", func(w *httptest.ResponseRecorder) { WriteConflict(w, "m") }, 409, "conflict"},
		{"rate limited", func(w *httptest.ResponseRecorder) { WriteTooManyRequests(w, "m") }, 429, "rate_limit_exceeded"},
		{"unavailable", func(w *httptest.ResponseRecorder) { WriteUnavailable(w, "m") }, 503, "unavailable"},
		{"internal", func(w *httptest.ResponseRecorder) { WriteInternalError(w, "m") }, 500, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.write(w)

			assert.Equal(t, tc.wantStatus, w.Code)
			var resp ErrorResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp.Error)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, 201, map[string]string{"id": "abc"})

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "abc", body["id"])
}
