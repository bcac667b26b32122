package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jikulumessu/api/internal/models"
	pkgauth "github.com/jikulumessu/api/pkg/auth"
	"github.com/jikulumessu/api/pkg/logger"
)

// SessionIssuer covers the session lifecycle the auth service drives.
type SessionIssuer interface {
	Create(ctx context.Context, userID string) (string, error)
	Destroy(ctx context.Context, token string) (bool, error)
	DestroyAllForUser(ctx context.Context, userID string) error
}

// Registrar creates user accounts; the user service implements it.
type Registrar interface {
	Create(ctx context.Context, input CreateUserInput) (*models.User, error)
}

// AuthService handles credential verification and session issuance
type AuthService struct {
	users     UserRepository
	registrar Registrar
	sessions  SessionIssuer
	audit     *logger.AuditLogger
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserRepository, registrar Registrar, sessions SessionIssuer, audit *logger.AuditLogger, log *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		registrar: registrar,
		sessions:  sessions,
		audit:     audit,
		logger:    log,
	}
}

// Login verifies the credentials and issues a session. Unknown emails,
// accounts without a local password, and wrong passwords all return the same
// ErrUnauthorized so the response never reveals whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Unknown email still pays for a full bcrypt comparison so
			// response timing matches the wrong-password path.
			pkgauth.BurnPasswordCheck(password)
			s.audit.LogAuthAttempt(logger.AuditEvent{
				EventType:     "login",
				IPAddress:     clientIP,
				Success:       false,
				FailureReason: "unknown email",
				Metadata:      map[string]string{"email": logger.SanitizedEmail(email)},
			})
			return nil, "", models.ErrUnauthorized
		}
		s.logger.Error("failed to look up user for login", slog.Any("error", err))
		return nil, "", models.ErrUnavailable
	}

	if !pkgauth.VerifyPassword(user.PasswordHash, password) {
		s.audit.LogAuthAttempt(logger.AuditEvent{
			EventType:     "login",
			UserID:        user.ID,
			IPAddress:     clientIP,
			Success:       false,
			FailureReason: "invalid credentials",
		})
		return nil, "", models.ErrUnauthorized
	}

	switch user.Status {
	case models.StatusSuspended:
		s.audit.LogAuthAttempt(logger.AuditEvent{
			EventType:     "login",
			UserID:        user.ID,
			IPAddress:     clientIP,
			Success:       false,
			FailureReason: "account suspended",
		})
		return nil, "", models.ErrAccountSuspended
	case models.StatusInactive:
		s.audit.LogAuthAttempt(logger.AuditEvent{
			EventType:     "login",
			UserID:        user.ID,
			IPAddress:     clientIP,
			Success:       false,
			FailureReason: "account inactive",
		})
		return nil, "", models.ErrAccountInactive
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to create session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, "", models.ErrUnavailable
	}

	s.audit.LogAuthAttempt(logger.AuditEvent{
		EventType: "login",
		UserID:    user.ID,
		IPAddress: clientIP,
		Success:   true,
	})
	return user, token, nil
}

// Register creates a user account and immediately issues a session for it.
func (s *AuthService) Register(ctx context.Context, input CreateUserInput, clientIP string) (*models.User, string, error) {
	// Self-registration never chooses its own role or status.
	input.Role = models.RoleUser
	input.Status = models.StatusActive

	user, err := s.registrar.Create(ctx, input)
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to create session after registration", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, "", models.ErrUnavailable
	}

	s.audit.LogAccountAction("register", user.ID, clientIP, nil)
	return user, token, nil
}

// Logout destroys the given session. Destroying an unknown token is not an
// error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	_, err := s.sessions.Destroy(ctx, token)
	if err != nil {
		s.logger.Error("failed to destroy session", slog.Any("error", err))
		return models.ErrUnavailable
	}
	return nil
}

// ChangePassword verifies the current password before setting the new one,
// then revokes every other session for the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to look up user for password change", slog.Any("error", err))
		return models.ErrUnavailable
	}

	if !pkgauth.VerifyPassword(user.PasswordHash, currentPassword) {
		return models.ErrUnauthorized
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrUnavailable
	}

	if err := s.sessions.DestroyAllForUser(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke sessions after password change", slog.String("user_id", userID), slog.Any("error", err))
	}

	s.audit.LogAccountAction("password_change", userID, "", nil)
	return nil
}
