package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/background"
	"github.com/jikulumessu/api/internal/config"
	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/handlers"
	middlewareCustom "github.com/jikulumessu/api/internal/middleware"
	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/repositories"
	"github.com/jikulumessu/api/internal/routes"
	"github.com/jikulumessu/api/internal/services"
	pkgauth "github.com/jikulumessu/api/pkg/auth"
	pkghttp "github.com/jikulumessu/api/pkg/http"
	pkglogger "github.com/jikulumessu/api/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	adminLogRepo := repositories.NewAdminLogRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	recoveryRepo := repositories.NewRecoveryTokenRepository(db)

	// Session manager and cookie settings
	sessionManager := auth.NewSessionManager(sessionRepo, userRepo, cfg.Auth.SessionTTL, logger)
	cookieConfig := auth.CookieConfig{
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.Server.Env == "production",
	}

	auditLogger := pkglogger.NewAuditLogger(logger)

	// AWS SES email service
	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.ResetURLBase,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	userService := services.NewUserService(userRepo, logger)
	authService := services.NewAuthService(userRepo, userService, sessionManager, auditLogger, logger)
	messagingService := services.NewMessagingService(conversationRepo, messageRepo, userRepo, logger)
	adminService := services.NewAdminService(userRepo, adminLogRepo, settingsRepo, sessionManager, logger)
	recoveryService := services.NewRecoveryService(userRepo, recoveryRepo, sessionManager, emailService, cfg.Auth.RecoveryTTL, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, recoveryService, cookieConfig, cfg.Auth.SessionTTL, ipConfig)
	profileHandler := handlers.NewProfileHandler(userService, sessionManager, cookieConfig)
	providerHandler := handlers.NewProviderHandler(userService)
	messageHandler := handlers.NewMessageHandler(messagingService)
	adminHandler := handlers.NewAdminHandler(adminService, ipConfig)

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Cleanup task for expired sessions and recovery tokens
	cleanupManager := background.NewCleanupManager(sessionRepo, recoveryRepo, logger, cfg.Auth.CleanupInterval)

	// Settings are read on every request by the maintenance and feature
	// gates; a short cache keeps that off the hot path.
	settingsSource := middlewareCustom.NewSettingsCache(settingsRepo, 10*time.Second)

	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, profileHandler, providerHandler, messageHandler, adminHandler, sessionManager, cookieConfig, settingsSource)

	// Health check with database. Exempt from maintenance mode.
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first super admin if ADMIN_EMAIL and
// ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		FirstName:    "Admin",
		LastName:     "Jikulumessu",
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Phone:        "000000000",
		BirthDate:    time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		Province:     "Luanda",
		Municipality: "Luanda",
		Neighborhood: "Sede",
		Services:     []string{"administração"},
		ContractType: "tempo_integral",
		Availability: "indisponível",
		Role:         models.RoleSuperAdmin,
		Status:       models.StatusActive,
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
