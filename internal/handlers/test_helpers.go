package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/repositories"
	"github.com/jikulumessu/api/internal/services"
	pkghttp "github.com/jikulumessu/api/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext injects an authenticated user into the request context,
// standing in for the Authenticator middleware.
func WithAuthContext(req *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	return req.WithContext(ctx)
}

// WithChiRouteContext adds chi URL parameters to the request context so
// handlers can be tested without a router.
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc          func(ctx context.Context, email, password, clientIP string) (*models.User, string, error)
	RegisterFunc       func(ctx context.Context, input services.CreateUserInput, clientIP string) (*models.User, string, error)
	LogoutFunc         func(ctx context.Context, token string) error
	ChangePasswordFunc func(ctx context.Context, userID, currentPassword, newPassword string) error
}

func (m *MockAuthService) Login(ctx context.Context, email, password, clientIP string) (*models.User, string, error) {
	if m.LoginFunc == nil {
		return nil, "", models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password, clientIP)
}

func (m *MockAuthService) Register(ctx context.Context, input services.CreateUserInput, clientIP string) (*models.User, string, error) {
	if m.RegisterFunc == nil {
		return nil, "", models.ErrDuplicateEmail
	}
	return m.RegisterFunc(ctx, input, clientIP)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, token)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc == nil {
		return models.ErrUnauthorized
	}
	return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
}

// MockRecoveryService implements RecoveryServiceInterface for testing
type MockRecoveryService struct {
	RequestResetFunc  func(ctx context.Context, email string) error
	ResetPasswordFunc func(ctx context.Context, token, newPassword string) error
}

func (m *MockRecoveryService) RequestReset(ctx context.Context, email string) error {
	if m.RequestResetFunc == nil {
		return nil
	}
	return m.RequestResetFunc(ctx, email)
}

func (m *MockRecoveryService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc == nil {
		return models.ErrUnauthorized
	}
	return m.ResetPasswordFunc(ctx, token, newPassword)
}

// MockProfileService implements ProfileServiceInterface for testing
type MockProfileService struct {
	GetFunc    func(ctx context.Context, id string) (*models.User, error)
	UpdateFunc func(ctx context.Context, id string, input services.UpdateUserInput) (*models.User, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockProfileService) Get(ctx context.Context, id string) (*models.User, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, id)
}

func (m *MockProfileService) Update(ctx context.Context, id string, input services.UpdateUserInput) (*models.User, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, id, input)
}

func (m *MockProfileService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

// MockSessionRevoker implements SessionRevoker for testing
type MockSessionRevoker struct {
	DestroyAllForUserFunc func(ctx context.Context, userID string) error
}

func (m *MockSessionRevoker) DestroyAllForUser(ctx context.Context, userID string) error {
	if m.DestroyAllForUserFunc == nil {
		return nil
	}
	return m.DestroyAllForUserFunc(ctx, userID)
}

// MockProviderService implements ProviderServiceInterface for testing
type MockProviderService struct {
	GetFunc             func(ctx context.Context, id string) (*models.User, error)
	SearchProvidersFunc func(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error)
}

func (m *MockProviderService) Get(ctx context.Context, id string) (*models.User, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, id)
}

func (m *MockProviderService) SearchProviders(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error) {
	if m.SearchProvidersFunc == nil {
		return []*models.User{}, nil
	}
	return m.SearchProvidersFunc(ctx, filter, limit, offset)
}

// MockMessagingService implements MessagingServiceInterface for testing
type MockMessagingService struct {
	StartConversationFunc func(ctx context.Context, userID, otherID string) (*models.Conversation, error)
	ListConversationsFunc func(ctx context.Context, userID string) ([]*repositories.ConversationSummary, error)
	ListMessagesFunc      func(ctx context.Context, conversationID, userID string) ([]*models.Message, error)
	SendMessageFunc       func(ctx context.Context, conversationID, senderID, content string) (*models.Message, error)
	DeleteMessageFunc     func(ctx context.Context, messageID, userID string) error
	UnreadCountFunc       func(ctx context.Context, userID string) (int64, error)
}

func (m *MockMessagingService) StartConversation(ctx context.Context, userID, otherID string) (*models.Conversation, error) {
	if m.StartConversationFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.StartConversationFunc(ctx, userID, otherID)
}

func (m *MockMessagingService) ListConversations(ctx context.Context, userID string) ([]*repositories.ConversationSummary, error) {
	if m.ListConversationsFunc == nil {
		return []*repositories.ConversationSummary{}, nil
	}
	return m.ListConversationsFunc(ctx, userID)
}

func (m *MockMessagingService) ListMessages(ctx context.Context, conversationID, userID string) ([]*models.Message, error) {
	if m.ListMessagesFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ListMessagesFunc(ctx, conversationID, userID)
}

func (m *MockMessagingService) SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	if m.SendMessageFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SendMessageFunc(ctx, conversationID, senderID, content)
}

func (m *MockMessagingService) DeleteMessage(ctx context.Context, messageID, userID string) error {
	if m.DeleteMessageFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteMessageFunc(ctx, messageID, userID)
}

func (m *MockMessagingService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if m.UnreadCountFunc == nil {
		return 0, nil
	}
	return m.UnreadCountFunc(ctx, userID)
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	ListUsersFunc      func(ctx context.Context, limit, offset int) ([]*models.User, error)
	ChangeRoleFunc     func(ctx context.Context, actor services.ActionContext, userID string, role models.Role) (*models.User, error)
	ChangeStatusFunc   func(ctx context.Context, actor services.ActionContext, userID string, status models.Status) (*models.User, error)
	DeleteUserFunc     func(ctx context.Context, actor services.ActionContext, userID string) error
	ListLogsFunc       func(ctx context.Context, actorID string, limit, offset int) ([]*models.AdminLog, error)
	GetSettingsFunc    func(ctx context.Context) (*models.SiteSettings, error)
	UpdateSettingsFunc func(ctx context.Context, actor services.ActionContext, next models.SiteSettings) (*models.SiteSettings, error)
	StatsFunc          func(ctx context.Context) (*services.AdminStats, error)
}

func (m *MockAdminService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListUsersFunc == nil {
		return []*models.User{}, nil
	}
	return m.ListUsersFunc(ctx, limit, offset)
}

func (m *MockAdminService) ChangeRole(ctx context.Context, actor services.ActionContext, userID string, role models.Role) (*models.User, error) {
	if m.ChangeRoleFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ChangeRoleFunc(ctx, actor, userID, role)
}

func (m *MockAdminService) ChangeStatus(ctx context.Context, actor services.ActionContext, userID string, status models.Status) (*models.User, error) {
	if m.ChangeStatusFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ChangeStatusFunc(ctx, actor, userID, status)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, actor services.ActionContext, userID string) error {
	if m.DeleteUserFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteUserFunc(ctx, actor, userID)
}

func (m *MockAdminService) ListLogs(ctx context.Context, actorID string, limit, offset int) ([]*models.AdminLog, error) {
	if m.ListLogsFunc == nil {
		return []*models.AdminLog{}, nil
	}
	return m.ListLogsFunc(ctx, actorID, limit, offset)
}

func (m *MockAdminService) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	if m.GetSettingsFunc == nil {
		return models.DefaultSiteSettings(), nil
	}
	return m.GetSettingsFunc(ctx)
}

func (m *MockAdminService) UpdateSettings(ctx context.Context, actor services.ActionContext, next models.SiteSettings) (*models.SiteSettings, error) {
	if m.UpdateSettingsFunc == nil {
		return &next, nil
	}
	return m.UpdateSettingsFunc(ctx, actor, next)
}

func (m *MockAdminService) Stats(ctx context.Context) (*services.AdminStats, error) {
	if m.StatsFunc == nil {
		return &services.AdminStats{}, nil
	}
	return m.StatsFunc(ctx)
}
