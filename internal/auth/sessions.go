package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jikulumessu/api/internal/models"
	pkgauth "github.com/jikulumessu/api/pkg/auth"
)

// SessionStore abstracts session persistence so sessions can live in
// Postgres in production and in memory in tests.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) (bool, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

// UserDirectory is the subset of the user repository the session manager
// needs to resolve an authenticated principal.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SessionManager issues, validates, and revokes opaque session tokens.
type SessionManager struct {
	store  SessionStore
	users  UserDirectory
	ttl    time.Duration
	logger *slog.Logger
}

func NewSessionManager(store SessionStore, users UserDirectory, ttl time.Duration, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		store:  store,
		users:  users,
		ttl:    ttl,
		logger: logger,
	}
}

// TTL returns the configured session lifetime, used for the cookie Max-Age.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// Create issues a new session for the user and returns the opaque token.
func (sm *SessionManager) Create(ctx context.Context, userID string) (string, error) {
	token, err := pkgauth.GenerateSessionToken()
	if err != nil {
		sm.logger.Error("failed to generate session token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	now := time.Now()
	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(sm.ttl),
		CreatedAt: now,
	}

	if err := sm.store.Create(ctx, session); err != nil {
		sm.logger.Error("failed to store session", slog.String("user_id", userID), slog.Any("error", err))
		return "", models.ErrUnavailable
	}

	return token, nil
}

// Validate resolves a token to its owning user. Absent, unknown, and expired
// tokens are all reported as ErrUnauthorized so the response never reveals
// whether a session ever existed. Expiry is checked on every call; the
// background sweep is not required for correctness. Expiry is never extended
// here (no sliding renewal).
func (sm *SessionManager) Validate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrUnauthorized
	}

	session, err := sm.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		sm.logger.Error("session lookup failed", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	if session.Expired(time.Now()) {
		// Lazy reclamation; the outcome for the caller is the same either way.
		if _, err := sm.store.Delete(ctx, token); err != nil {
			sm.logger.Warn("failed to delete expired session", slog.Any("error", err))
		}
		return nil, models.ErrUnauthorized
	}

	user, err := sm.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Owner deleted since the session was issued.
			return nil, models.ErrUnauthorized
		}
		sm.logger.Error("failed to resolve session user", slog.String("user_id", session.UserID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	return user, nil
}

// Destroy removes a session. Destroying an absent token returns false but is
// not an error, which makes logout idempotent.
func (sm *SessionManager) Destroy(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	removed, err := sm.store.Delete(ctx, token)
	if err != nil {
		sm.logger.Error("failed to destroy session", slog.Any("error", err))
		return false, models.ErrUnavailable
	}

	return removed, nil
}

// DestroyAllForUser revokes every session the user holds, e.g. after a
// password reset.
func (sm *SessionManager) DestroyAllForUser(ctx context.Context, userID string) error {
	if _, err := sm.store.DeleteByUserID(ctx, userID); err != nil {
		sm.logger.Error("failed to destroy user sessions", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrUnavailable
	}
	return nil
}
