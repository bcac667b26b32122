package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/config"
	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/handlers"
	"github.com/jikulumessu/api/internal/routes"
	"github.com/jikulumessu/api/internal/services"
	pkghttp "github.com/jikulumessu/api/pkg/http"
	pkglogger "github.com/jikulumessu/api/pkg/logger"
)

// SentEmail represents a captured recovery email
type SentEmail struct {
	To    string
	Token string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendPasswordResetEmail records the email instead of delivering it
func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{To: email, Token: token})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	Config       *config.Config

	// Dependency references for inspection in tests
	SessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewTestServer initializes a complete HTTP server with real database + mocked email
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			SessionTTL:      24 * time.Hour,
			RecoveryTTL:     1 * time.Hour,
			CleanupInterval: 1 * time.Hour,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
			TrustedProxies: []string{},
		},
		Email: config.EmailConfig{
			FromAddress:  "no-reply@test.local",
			ResetURLBase: "http://localhost:3000/redefinir-senha",
		},
	}

	userRepo, sessionRepo, conversationRepo, messageRepo, adminLogRepo, settingsRepo, recoveryRepo :=
		InitializeRepositories(db)

	mockEmail := &MockEmailService{
		SentEmails: []SentEmail{},
	}

	sessionManager := auth.NewSessionManager(sessionRepo, userRepo, cfg.Auth.SessionTTL, logger)
	cookieConfig := auth.CookieConfig{}

	auditLogger := pkglogger.NewAuditLogger(logger)

	userService := services.NewUserService(userRepo, logger)
	authService := services.NewAuthService(userRepo, userService, sessionManager, auditLogger, logger)
	messagingService := services.NewMessagingService(conversationRepo, messageRepo, userRepo, logger)
	adminService := services.NewAdminService(userRepo, adminLogRepo, settingsRepo, sessionManager, logger)
	recoveryService := services.NewRecoveryService(userRepo, recoveryRepo, sessionManager, mockEmail, cfg.Auth.RecoveryTTL, logger)

	ipConfig := &pkghttp.IPConfig{
		TrustedProxies: cfg.Server.TrustedProxies,
	}
	authHandler := handlers.NewAuthHandler(authService, recoveryService, cookieConfig, cfg.Auth.SessionTTL, ipConfig)
	profileHandler := handlers.NewProfileHandler(userService, sessionManager, cookieConfig)
	providerHandler := handlers.NewProviderHandler(userService)
	messageHandler := handlers.NewMessageHandler(messagingService)
	adminHandler := handlers.NewAdminHandler(adminService, ipConfig)

	// Setup Chi router with middleware
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Settings go straight to the repository so admin changes take
	// effect on the next request instead of after a cache TTL.
	routes.RegisterRoutes(r, authHandler, profileHandler, providerHandler, messageHandler, adminHandler, sessionManager, cookieConfig, settingsRepo)

	server := httptest.NewServer(r)

	return &TestServer{
		Server:         server,
		DB:             db,
		EmailService:   mockEmail,
		Config:         cfg,
		SessionManager: sessionManager,
		logger:         logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

var clientSeq int64
var clientSeqMu sync.Mutex

// Client is an HTTP client with its own cookie jar, representing one
// browser session. Each client reports a distinct forwarded IP so the
// per-IP rate limits on the auth endpoints do not couple tests.
type Client struct {
	http    *http.Client
	baseURL string
	ip      string
}

// NewClient creates a fresh client with an empty cookie jar
func (ts *TestServer) NewClient() *Client {
	clientSeqMu.Lock()
	clientSeq++
	seq := clientSeq
	clientSeqMu.Unlock()

	jar, _ := cookiejar.New(nil)
	return &Client{
		http:    &http.Client{Jar: jar},
		baseURL: ts.Server.URL,
		ip:      fmt.Sprintf("10.1.%d.%d", seq/250, seq%250+1),
	}
}

// Do makes an HTTP request, carrying the client's session cookie
func (c *Client) Do(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", c.ip)

	return c.http.Do(req)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetErrorCode extracts the error code from an error response
func GetErrorCode(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if code, ok := errResp["error"].(string); ok {
		return code, nil
	}
	return "", nil
}
