package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/models"
)

// AdminLogRepository persists the append-only audit trail of privileged
// actions. It deliberately exposes no update or delete operation.
type AdminLogRepository struct {
	pool *pgxpool.Pool
}

func NewAdminLogRepository(db *database.DB) *AdminLogRepository {
	return &AdminLogRepository{pool: db.Pool}
}

func scanAdminLogRow(scanner rowScanner) (*models.AdminLog, error) {
	var log models.AdminLog
	err := scanner.Scan(
		&log.ID, &log.ActorID, &log.Action, &log.TargetType, &log.TargetID,
		&log.Details, &log.IPAddress, &log.UserAgent, &log.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &log, nil
}

func scanAdminLogRows(rows pgx.Rows) ([]*models.AdminLog, error) {
	defer rows.Close()

	logs := make([]*models.AdminLog, 0)

	for rows.Next() {
		log, err := scanAdminLogRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin log rows: %w", err)
	}

	return logs, nil
}

// Append records a privileged action.
func (r *AdminLogRepository) Append(ctx context.Context, log *models.AdminLog) (*models.AdminLog, error) {
	query := `
		INSERT INTO admin_logs (id, actor_id, action, target_type, target_id,
			details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, actor_id, action, target_type, target_id,
		          details, ip_address, user_agent, created_at
	`

	result, err := scanAdminLogRow(r.pool.QueryRow(ctx, query,
		uuid.New().String(), log.ActorID, log.Action, log.TargetType, log.TargetID,
		log.Details, log.IPAddress, log.UserAgent,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to append admin log: %w", err)
	}

	return result, nil
}

// List returns the most recent entries, newest first.
func (r *AdminLogRepository) List(ctx context.Context, limit, offset int) ([]*models.AdminLog, error) {
	query := `
		SELECT id, actor_id, action, target_type, target_id,
		       details, ip_address, user_agent, created_at
		FROM admin_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin logs: %w", err)
	}

	return scanAdminLogRows(rows)
}

// ListByActor returns a single admin's entries, newest first.
func (r *AdminLogRepository) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*models.AdminLog, error) {
	query := `
		SELECT id, actor_id, action, target_type, target_id,
		       details, ip_address, user_agent, created_at
		FROM admin_logs
		WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, actorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin logs: %w", err)
	}

	return scanAdminLogRows(rows)
}
