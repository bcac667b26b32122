package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jikulumessu/api/internal/models"
	pkgauth "github.com/jikulumessu/api/pkg/auth"
	"github.com/jikulumessu/api/pkg/logger"
)

// RecoveryTokenRepository defines the interface for recovery token storage
type RecoveryTokenRepository interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.RecoveryToken, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RecoveryToken, error)
	MarkUsed(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// RecoveryService handles password recovery by email
type RecoveryService struct {
	users    UserRepository
	tokens   RecoveryTokenRepository
	sessions SessionIssuer
	email    EmailService
	ttl      time.Duration
	logger   *slog.Logger
}

// NewRecoveryService creates a new RecoveryService
func NewRecoveryService(users UserRepository, tokens RecoveryTokenRepository, sessions SessionIssuer, email EmailService, ttl time.Duration, log *slog.Logger) *RecoveryService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RecoveryService{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		email:    email,
		ttl:      ttl,
		logger:   log,
	}
}

// RequestReset starts a password recovery. It returns nil whether or not the
// email belongs to an account, so the caller's response never reveals which
// emails are registered. When the account exists an emailed link carries a
// single-use token; only its sha256 digest is stored.
func (s *RecoveryService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				slog.String("email", logger.SanitizedEmail(email)))
			return nil
		}
		s.logger.Error("failed to look up user for password reset", slog.Any("error", err))
		return models.ErrUnavailable
	}

	if user.Email == "" {
		return nil
	}

	plain, digest, err := pkgauth.GenerateRecoveryToken()
	if err != nil {
		s.logger.Error("failed to generate recovery token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if _, err := s.tokens.Create(ctx, user.ID, digest, time.Now().Add(s.ttl)); err != nil {
		s.logger.Error("failed to store recovery token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrUnavailable
	}

	if err := s.email.SendPasswordResetEmail(ctx, user.Email, plain); err != nil {
		s.logger.Error("failed to send recovery email", slog.String("user_id", user.ID), slog.Any("error", err))
		// The stored token is harmless; it expires on its own.
		return nil
	}

	return nil
}

// ResetPassword consumes a recovery token and sets the new password. An
// unknown, expired, or already used token yields ErrUnauthorized. All of the
// user's sessions are destroyed after a successful reset.
func (s *RecoveryService) ResetPassword(ctx context.Context, token, newPassword string) error {
	rec, err := s.tokens.GetByTokenHash(ctx, pkgauth.HashRecoveryToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to look up recovery token", slog.Any("error", err))
		return models.ErrUnavailable
	}

	if !rec.Usable(time.Now()) {
		return models.ErrUnauthorized
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.tokens.MarkUsed(ctx, rec.ID); err != nil {
		// A concurrent reset already consumed the token.
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to mark recovery token used", slog.Any("error", err))
		return models.ErrUnavailable
	}

	if err := s.users.UpdatePassword(ctx, rec.UserID, hash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", rec.UserID), slog.Any("error", err))
		return models.ErrUnavailable
	}

	if err := s.sessions.DestroyAllForUser(ctx, rec.UserID); err != nil {
		s.logger.Warn("failed to revoke sessions after password reset", slog.String("user_id", rec.UserID), slog.Any("error", err))
	}

	s.logger.Info("password reset completed", slog.String("user_id", rec.UserID))
	return nil
}
