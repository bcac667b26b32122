package integration

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/repositories"
)

// TestDB manages a PostgreSQL testcontainer and the migrated schema.
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase starts a PostgreSQL container and runs all migrations.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("jikulumessu"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         database.NewFromPool(pool, logger),
	}, nil
}

// runMigrations executes all goose migrations against the container.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	goose.SetLogger(log.New(io.Discard, "", 0))

	// Goose works on database/sql, not pgx pools.
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool.
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables resets all mutable state between tests. The site_settings
// singleton row is restored to its defaults rather than dropped.
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"messages",
		"conversations",
		"recovery_tokens",
		"sessions",
		"admin_logs",
		"users",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	_, err := db.Pool.Exec(ctx, `
		UPDATE site_settings
		SET maintenance_mode = false, registration_open = true, messaging_enabled = true, updated_at = now()
		WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to reset site settings: %w", err)
	}

	return nil
}

// InitializeRepositories creates all repository instances.
func InitializeRepositories(db *database.DB) (
	*repositories.UserRepository,
	*repositories.SessionRepository,
	*repositories.ConversationRepository,
	*repositories.MessageRepository,
	*repositories.AdminLogRepository,
	*repositories.SettingsRepository,
	*repositories.RecoveryTokenRepository,
) {
	return repositories.NewUserRepository(db),
		repositories.NewSessionRepository(db),
		repositories.NewConversationRepository(db),
		repositories.NewMessageRepository(db),
		repositories.NewAdminLogRepository(db),
		repositories.NewSettingsRepository(db),
		repositories.NewRecoveryTokenRepository(db)
}
