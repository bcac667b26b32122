package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/models"
)

const userColumns = `id, first_name, last_name, email, password_hash, phone, birth_date,
	province, municipality, neighborhood, services, contract_type, availability,
	facebook_url, instagram_url, tiktok_url, avatar_url,
	role, status, average_rating, total_reviews, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var email, passwordHash *string

	err := scanner.Scan(
		&user.ID, &user.FirstName, &user.LastName, &email, &passwordHash,
		&user.Phone, &user.BirthDate,
		&user.Province, &user.Municipality, &user.Neighborhood,
		&user.Services, &user.ContractType, &user.Availability,
		&user.FacebookURL, &user.InstagramURL, &user.TikTokURL, &user.AvatarURL,
		&user.Role, &user.Status, &user.AverageRating, &user.TotalReviews,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if email != nil {
		user.Email = *email
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// nullable maps the empty string to NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

// SearchFilter narrows the public provider listing.
type SearchFilter struct {
	Province     string
	Municipality string
	Service      string
}

// Search returns active providers matching the filter, newest first.
func (r *UserRepository) Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE status = 'active'
		  AND ($1 = '' OR province = $1)
		  AND ($2 = '' OR municipality = $2)
		  AND ($3 = '' OR $3 = ANY(services))
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query,
		filter.Province, filter.Municipality, filter.Service, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return scanUserRows(rows)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}

	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, phone, birth_date,
			province, municipality, neighborhood, services, contract_type, availability,
			facebook_url, instagram_url, tiktok_url, avatar_url,
			role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.FirstName, user.LastName,
		nullable(user.Email), nullable(user.PasswordHash),
		user.Phone, user.BirthDate,
		user.Province, user.Municipality, user.Neighborhood,
		user.Services, user.ContractType, user.Availability,
		user.FacebookURL, user.InstagramURL, user.TikTokURL, user.AvatarURL,
		user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET first_name = $1, last_name = $2, phone = $3, birth_date = $4,
			province = $5, municipality = $6, neighborhood = $7, services = $8,
			contract_type = $9, availability = $10,
			facebook_url = $11, instagram_url = $12, tiktok_url = $13, avatar_url = $14,
			role = $15, status = $16, updated_at = $17
		WHERE id = $18
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.FirstName, user.LastName, user.Phone, user.BirthDate,
		user.Province, user.Municipality, user.Neighborhood, user.Services,
		user.ContractType, user.Availability,
		user.FacebookURL, user.InstagramURL, user.TikTokURL, user.AvatarURL,
		user.Role, user.Status, user.UpdatedAt, id,
	))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, nullable(passwordHash), time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *UserRepository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) CountByStatus(ctx context.Context, status models.Status) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by status: %w", err)
	}
	return count, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return count, nil
}
