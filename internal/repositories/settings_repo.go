package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/models"
)

// SettingsRepository reads and writes the single site_settings row.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{pool: db.Pool}
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	query := `
		SELECT maintenance_mode, registration_open, messaging_enabled, updated_at
		FROM site_settings WHERE id = 1
	`

	var s models.SiteSettings
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.MaintenanceMode, &s.RegistrationOpen, &s.MessagingEnabled, &s.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s *models.SiteSettings) (*models.SiteSettings, error) {
	query := `
		UPDATE site_settings SET maintenance_mode = $1, registration_open = $2,
			messaging_enabled = $3, updated_at = $4
		WHERE id = 1
		RETURNING maintenance_mode, registration_open, messaging_enabled, updated_at
	`

	var updated models.SiteSettings
	err := r.pool.QueryRow(ctx, query,
		s.MaintenanceMode, s.RegistrationOpen, s.MessagingEnabled, time.Now(),
	).Scan(
		&updated.MaintenanceMode, &updated.RegistrationOpen,
		&updated.MessagingEnabled, &updated.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &updated, nil
}
