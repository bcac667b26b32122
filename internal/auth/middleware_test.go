package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jikulumessu/api/internal/models"
)

func okHandler(captured **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = GetUserFromContext(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticator_ValidSession(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))
	token, err := sm.Create(context.Background(), "user1")
	assert.NoError(t, err)

	var captured *models.User
	handler := Authenticator(sm, CookieConfig{})(okHandler(&captured))

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.NotNil(t, captured)
	assert.Equal(t, "user1", captured.ID)
}

func TestAuthenticator_MissingCookie(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))
	handler := Authenticator(sm, CookieConfig{})(okHandler(nil))

	req := httptest.NewRequest("GET", "/auth/me", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	// No cookie presented, so none is cleared.
	assert.Empty(t, w.Result().Cookies())
}

func TestAuthenticator_StaleCookieCleared(t *testing.T) {
	sm, _ := newTestSessionManager(time.Hour, activeUser("user1"))
	handler := Authenticator(sm, CookieConfig{})(okHandler(nil))

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)

	cookies := w.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestAuthenticator_UniformUnauthorizedBody(t *testing.T) {
	sm, _ := newTestSessionManager(-time.Minute, activeUser("user1"))
	expired, err := sm.Create(context.Background(), "user1")
	assert.NoError(t, err)

	handler := Authenticator(sm, CookieConfig{})(okHandler(nil))

	bodies := make(map[string]bool)
	for _, token := range []string{"", "unknown-token", expired} {
		req := httptest.NewRequest("GET", "/auth/me", nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, 401, w.Code)
		bodies[w.Body.String()] = true
	}

	// Missing, unknown, and expired tokens must be indistinguishable.
	assert.Len(t, bodies, 1)
}

func TestRequireAdmin_AllowsAdminRoles(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleSuperAdmin} {
		t.Run(string(role), func(t *testing.T) {
			admin := activeUser("admin1")
			admin.Role = role

			handler := RequireAdmin(okHandler(nil))
			req := httptest.NewRequest("GET", "/admin/users", nil)
			req = req.WithContext(context.WithValue(req.Context(), UserContextKey, admin))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, 200, w.Code)
		})
	}
}

func TestRequireAdmin_ForbidsRegularUser(t *testing.T) {
	handler := RequireAdmin(okHandler(nil))
	req := httptest.NewRequest("GET", "/admin/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserContextKey, activeUser("user1")))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 403, w.Code)
}

func TestRequireAdmin_SuspendedAdminLosesPrivileges(t *testing.T) {
	admin := activeUser("admin1")
	admin.Role = models.RoleAdmin
	admin.Status = models.StatusSuspended

	handler := RequireAdmin(okHandler(nil))
	req := httptest.NewRequest("GET", "/admin/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserContextKey, admin))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 403, w.Code)
}

func TestRequireAdmin_Unauthenticated(t *testing.T) {
	handler := RequireAdmin(okHandler(nil))
	req := httptest.NewRequest("GET", "/admin/users", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}
