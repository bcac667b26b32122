package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/models"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{pool: db.Pool}
}

// Create stores a new session row.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	return database.MapPostgresError(err)
}

// Get looks up a session by token. An unknown token maps to ErrNotFound;
// the expiry check is the caller's responsibility so that the absent and
// expired cases stay indistinguishable at the manager level.
func (r *SessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1`

	var session models.Session
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &session, nil
}

// Delete removes a session. Returns false when the token was already absent.
func (r *SessionRepository) Delete(ctx context.Context, token string) (bool, error) {
	query := `DELETE FROM sessions WHERE token = $1`

	result, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return false, database.MapPostgresError(err)
	}

	return result.RowsAffected() > 0, nil
}

// DeleteByUserID removes every session owned by a user, e.g. after a
// password reset.
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM sessions WHERE user_id = $1`

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}

// DeleteExpired reclaims expired sessions (call periodically).
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
