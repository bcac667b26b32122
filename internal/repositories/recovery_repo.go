package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/models"
)

type RecoveryTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRecoveryTokenRepository(db *database.DB) *RecoveryTokenRepository {
	return &RecoveryTokenRepository{pool: db.Pool}
}

func (r *RecoveryTokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.RecoveryToken, error) {
	query := `
		INSERT INTO recovery_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, token_hash, expires_at, used_at, created_at
	`

	var t models.RecoveryToken
	err := r.pool.QueryRow(ctx, query,
		uuid.New().String(), userID, tokenHash, expiresAt, time.Now(),
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &t, nil
}

func (r *RecoveryTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RecoveryToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM recovery_tokens WHERE token_hash = $1
	`

	var t models.RecoveryToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &t, nil
}

// MarkUsed consumes a token. The WHERE guard makes redemption single-use even
// under concurrent reset attempts.
func (r *RecoveryTokenRepository) MarkUsed(ctx context.Context, id string) error {
	query := `UPDATE recovery_tokens SET used_at = $1 WHERE id = $2 AND used_at IS NULL`

	result, err := r.pool.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteExpired reclaims expired tokens (call periodically).
func (r *RecoveryTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM recovery_tokens WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
