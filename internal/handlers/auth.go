package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/services"
	pkghttp "github.com/jikulumessu/api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, clientIP string) (*models.User, string, error)
	Register(ctx context.Context, input services.CreateUserInput, clientIP string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// RecoveryServiceInterface defines the interface for password recovery
type RecoveryServiceInterface interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service      AuthServiceInterface
	recovery     RecoveryServiceInterface
	cookieConfig auth.CookieConfig
	sessionTTL   time.Duration
	ipConfig     *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, recovery RecoveryServiceInterface, cookieConfig auth.CookieConfig, sessionTTL time.Duration, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:      service,
		recovery:     recovery,
		cookieConfig: cookieConfig,
		sessionTTL:   sessionTTL,
		ipConfig:     ipConfig,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	FirstName    string   `json:"first_name" validate:"required,min=1,max=100"`
	LastName     string   `json:"last_name" validate:"required,min=1,max=100"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Password     string   `json:"password" validate:"omitempty,min=8,max=128"`
	Phone        string   `json:"phone" validate:"required,min=6,max=30"`
	BirthDate    string   `json:"birth_date" validate:"required"`
	Province     string   `json:"province" validate:"required"`
	Municipality string   `json:"municipality" validate:"required"`
	Neighborhood string   `json:"neighborhood" validate:"required"`
	Services     []string `json:"services" validate:"required,min=1,dive,min=1"`
	ContractType string   `json:"contract_type" validate:"required"`
	Availability string   `json:"availability" validate:"required"`
	FacebookURL  string   `json:"facebook_url" validate:"omitempty,url"`
	InstagramURL string   `json:"instagram_url" validate:"omitempty,url"`
	TikTokURL    string   `json:"tiktok_url" validate:"omitempty,url"`
	AvatarURL    string   `json:"avatar_url" validate:"omitempty,url"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// RecoverRequest represents the request body for password recovery
type RecoverRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the request body for completing a recovery
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

const birthDateLayout = "2006-01-02"

// Register handles account creation. A valid registration also signs the
// user in by setting the session cookie.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		pkghttp.WriteBadRequest(w, "birth_date must be formatted as YYYY-MM-DD")
		return
	}

	input := services.CreateUserInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Password:     req.Password,
		Phone:        req.Phone,
		BirthDate:    birthDate,
		Province:     req.Province,
		Municipality: req.Municipality,
		Neighborhood: req.Neighborhood,
		Services:     req.Services,
		ContractType: req.ContractType,
		Availability: req.Availability,
		FacebookURL:  req.FacebookURL,
		InstagramURL: req.InstagramURL,
		TikTokURL:    req.TikTokURL,
		AvatarURL:    req.AvatarURL,
	}

	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)
	user, token, err := h.service.Register(r.Context(), input, clientIP)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateEmail):
			pkghttp.WriteConflict(w, "Email is already registered")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, token, h.sessionTTL, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	clientIP := pkghttp.ExtractClientIP(r, h.ipConfig)

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password, clientIP)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized),
			errors.Is(err, models.ErrAccountSuspended),
			errors.Is(err, models.ErrAccountInactive):
			// One uniform response for every credential or account-status
			// failure; anything else helps enumeration.
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, token, h.sessionTTL, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout destroys the presented session and clears the cookie. It succeeds
// even when no session is presented.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.GetSessionCookie(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
			return
		}
	}

	auth.ClearSessionCookie(w, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the authenticated user's own account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// ChangePassword rotates the authenticated user's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	// Every session was revoked, including this one.
	auth.ClearSessionCookie(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}

// Recover starts password recovery. The response is identical whether or not
// the email belongs to an account.
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.recovery.RequestReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, models.ErrUnavailable) {
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the email is registered, a recovery link has been sent.",
	})
}

// ResetPassword completes password recovery with an emailed token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.recovery.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid or expired recovery token")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
