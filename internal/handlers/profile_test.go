package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/handlers"
	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/services"
)

func strPtr(s string) *string { return &s }

func newProfileHandler(svc handlers.ProfileServiceInterface, sessions handlers.SessionRevoker) *handlers.ProfileHandler {
	return handlers.NewProfileHandler(svc, sessions, auth.CookieConfig{})
}

func TestProfileGet_Success(t *testing.T) {
	user := services.NewTestUser("user1", "ana@example.com", "Ana", "Paula")

	handler := newProfileHandler(&handlers.MockProfileService{}, &handlers.MockSessionRevoker{})
	req := handlers.NewTestRequest(t, "GET", "/profile", nil)
	req = handlers.WithAuthContext(req, user)

	w := httptest.NewRecorder()
	handler.Get(w, req)

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "user1", resp.ID)
	assert.Equal(t, "Ana Paula", resp.Name)
}

func TestProfileUpdate_PartialEdit(t *testing.T) {
	user := services.NewTestUser("user1", "ana@example.com", "Ana", "Paula")
	var gotInput services.UpdateUserInput

	mock := &handlers.MockProfileService{
		UpdateFunc: func(ctx context.Context, id string, input services.UpdateUserInput) (*models.User, error) {
			assert.Equal(t, "user1", id)
			gotInput = input
			user.Phone = *input.Phone
			return user, nil
		},
	}

	handler := newProfileHandler(mock, &handlers.MockSessionRevoker{})
	req := handlers.NewTestRequest(t, "PUT", "/profile", handlers.UpdateProfileRequest{
		Phone: strPtr("+244911222333"),
	})
	req = handlers.WithAuthContext(req, user)

	w := httptest.NewRecorder()
	handler.Update(w, req)

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "+244911222333", *gotInput.Phone)
	assert.Nil(t, gotInput.FirstName)
	assert.Nil(t, gotInput.BirthDate)
}

func TestProfileUpdate_BadBirthDate(t *testing.T) {
	user := services.NewTestUser("user1", "ana@example.com", "Ana", "Paula")

	handler := newProfileHandler(&handlers.MockProfileService{}, &handlers.MockSessionRevoker{})
	req := handlers.NewTestRequest(t, "PUT", "/profile", handlers.UpdateProfileRequest{
		BirthDate: strPtr("not-a-date"),
	})
	req = handlers.WithAuthContext(req, user)

	w := httptest.NewRecorder()
	handler.Update(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestProfileUpdate_UnderageRejected(t *testing.T) {
	user := services.NewTestUser("user1", "ana@example.com", "Ana", "Paula")
	mock := &handlers.MockProfileService{
		UpdateFunc: func(ctx context.Context, id string, input services.UpdateUserInput) (*models.User, error) {
			return nil, models.ErrBadRequest
		},
	}

	handler := newProfileHandler(mock, &handlers.MockSessionRevoker{})
	req := handlers.NewTestRequest(t, "PUT", "/profile", handlers.UpdateProfileRequest{
		BirthDate: strPtr("2015-01-01"),
	})
	req = handlers.WithAuthContext(req, user)

	w := httptest.NewRecorder()
	handler.Update(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestProfileDelete_RevokesSessionsAndClearsCookie(t *testing.T) {
	user := services.NewTestUser("user1", "ana@example.com", "Ana", "Paula")
	deleted := ""
	revoked := ""

	mock := &handlers.MockProfileService{
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	sessions := &handlers.MockSessionRevoker{
		DestroyAllForUserFunc: func(ctx context.Context, userID string) error {
			revoked = userID
			return nil
		},
	}

	handler := newProfileHandler(mock, sessions)
	req := handlers.NewTestRequest(t, "DELETE", "/profile", nil)
	req = handlers.WithAuthContext(req, user)

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "user1", deleted)
	assert.Equal(t, "user1", revoked)

	cookie := sessionCookie(w)
	assert.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge)
}

func TestProfile_Unauthenticated(t *testing.T) {
	handler := newProfileHandler(&handlers.MockProfileService{}, &handlers.MockSessionRevoker{})
	req := handlers.NewTestRequest(t, "GET", "/profile", nil)

	w := httptest.NewRecorder()
	handler.Get(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}
