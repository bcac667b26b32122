package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestUser builds a valid active user for tests.
func NewTestUser(id, email, firstName, lastName string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           id,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Phone:        "923000000",
		BirthDate:    time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC),
		Province:     "Luanda",
		Municipality: "Belas",
		Neighborhood: "Benfica",
		Services:     []string{"limpeza"},
		ContractType: "diarista",
		Availability: "dias úteis",
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	ListFunc           func(ctx context.Context, limit, offset int) ([]*models.User, error)
	SearchFunc         func(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error)
	CreateFunc         func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc         func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string) error
	DeleteFunc         func(ctx context.Context, id string) error
	CountTotalFunc     func(ctx context.Context) (int64, error)
	CountByStatusFunc  func(ctx context.Context, status models.Status) (int64, error)
	CountByRoleFunc    func(ctx context.Context, role models.Role) (int64, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Search(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, filter, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) CountTotal(ctx context.Context) (int64, error) {
	if m.CountTotalFunc != nil {
		return m.CountTotalFunc(ctx)
	}
	return 0, nil
}

func (m *MockUserRepository) CountByStatus(ctx context.Context, status models.Status) (int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, status)
	}
	return 0, nil
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	if m.CountByRoleFunc != nil {
		return m.CountByRoleFunc(ctx, role)
	}
	return 0, nil
}

// MockSessionIssuer implements SessionIssuer for testing
type MockSessionIssuer struct {
	CreateFunc            func(ctx context.Context, userID string) (string, error)
	DestroyFunc           func(ctx context.Context, token string) (bool, error)
	DestroyAllForUserFunc func(ctx context.Context, userID string) error
}

func (m *MockSessionIssuer) Create(ctx context.Context, userID string) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID)
	}
	return "test-session-token", nil
}

func (m *MockSessionIssuer) Destroy(ctx context.Context, token string) (bool, error) {
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx, token)
	}
	return true, nil
}

func (m *MockSessionIssuer) DestroyAllForUser(ctx context.Context, userID string) error {
	if m.DestroyAllForUserFunc != nil {
		return m.DestroyAllForUserFunc(ctx, userID)
	}
	return nil
}

// MockConversationRepository implements ConversationRepository for testing
type MockConversationRepository struct {
	GetByIDFunc     func(ctx context.Context, id string) (*models.Conversation, error)
	GetByPairFunc   func(ctx context.Context, userA, userB string) (*models.Conversation, error)
	CreateFunc      func(ctx context.Context, userA, userB string) (*models.Conversation, error)
	TouchFunc       func(ctx context.Context, id string, at time.Time) error
	ListForUserFunc func(ctx context.Context, userID string) ([]*repositories.ConversationSummary, error)
}

func (m *MockConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockConversationRepository) GetByPair(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if m.GetByPairFunc != nil {
		return m.GetByPairFunc(ctx, userA, userB)
	}
	return nil, models.ErrNotFound
}

func (m *MockConversationRepository) Create(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userA, userB)
	}
	return nil, models.ErrInternalServer
}

func (m *MockConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, id, at)
	}
	return nil
}

func (m *MockConversationRepository) ListForUser(ctx context.Context, userID string) ([]*repositories.ConversationSummary, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID)
	}
	return []*repositories.ConversationSummary{}, nil
}

// MockMessageRepository implements MessageRepository for testing
type MockMessageRepository struct {
	CreateFunc             func(ctx context.Context, conversationID, senderID, content string) (*models.Message, error)
	GetByIDFunc            func(ctx context.Context, id string) (*models.Message, error)
	ListByConversationFunc func(ctx context.Context, conversationID string) ([]*models.Message, error)
	MarkReadFunc           func(ctx context.Context, conversationID, readerID string) (int64, error)
	DeleteFunc             func(ctx context.Context, id string) error
	UnreadCountForUserFunc func(ctx context.Context, userID string) (int64, error)
}

func (m *MockMessageRepository) Create(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, conversationID, senderID, content)
	}
	return nil, models.ErrInternalServer
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error) {
	if m.ListByConversationFunc != nil {
		return m.ListByConversationFunc(ctx, conversationID)
	}
	return []*models.Message{}, nil
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, conversationID, readerID)
	}
	return 0, nil
}

func (m *MockMessageRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockMessageRepository) UnreadCountForUser(ctx context.Context, userID string) (int64, error) {
	if m.UnreadCountForUserFunc != nil {
		return m.UnreadCountForUserFunc(ctx, userID)
	}
	return 0, nil
}

// MockAdminLogRepository implements AdminLogRepository for testing
type MockAdminLogRepository struct {
	AppendFunc      func(ctx context.Context, log *models.AdminLog) (*models.AdminLog, error)
	ListFunc        func(ctx context.Context, limit, offset int) ([]*models.AdminLog, error)
	ListByActorFunc func(ctx context.Context, actorID string, limit, offset int) ([]*models.AdminLog, error)
}

func (m *MockAdminLogRepository) Append(ctx context.Context, log *models.AdminLog) (*models.AdminLog, error) {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, log)
	}
	return log, nil
}

func (m *MockAdminLogRepository) List(ctx context.Context, limit, offset int) ([]*models.AdminLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.AdminLog{}, nil
}

func (m *MockAdminLogRepository) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*models.AdminLog, error) {
	if m.ListByActorFunc != nil {
		return m.ListByActorFunc(ctx, actorID, limit, offset)
	}
	return []*models.AdminLog{}, nil
}

// MockSettingsRepository implements SettingsRepository for testing
type MockSettingsRepository struct {
	GetFunc    func(ctx context.Context) (*models.SiteSettings, error)
	UpdateFunc func(ctx context.Context, s *models.SiteSettings) (*models.SiteSettings, error)
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return models.DefaultSiteSettings(), nil
}

func (m *MockSettingsRepository) Update(ctx context.Context, s *models.SiteSettings) (*models.SiteSettings, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, s)
	}
	return s, nil
}

// MockRecoveryTokenRepository implements RecoveryTokenRepository for testing
type MockRecoveryTokenRepository struct {
	CreateFunc         func(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.RecoveryToken, error)
	GetByTokenHashFunc func(ctx context.Context, tokenHash string) (*models.RecoveryToken, error)
	MarkUsedFunc       func(ctx context.Context, id string) error
	DeleteExpiredFunc  func(ctx context.Context) (int64, error)
}

func (m *MockRecoveryTokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.RecoveryToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, tokenHash, expiresAt)
	}
	return &models.RecoveryToken{ID: "tok", UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}, nil
}

func (m *MockRecoveryTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RecoveryToken, error) {
	if m.GetByTokenHashFunc != nil {
		return m.GetByTokenHashFunc(ctx, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockRecoveryTokenRepository) MarkUsed(ctx context.Context, id string) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, id)
	}
	return nil
}

func (m *MockRecoveryTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendPasswordResetEmailFunc func(ctx context.Context, email, token string) error
}

func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, token)
	}
	return nil
}
