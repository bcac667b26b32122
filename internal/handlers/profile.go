package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/services"
	pkghttp "github.com/jikulumessu/api/pkg/http"
)

// ProfileServiceInterface defines the interface for self-service profile
// operations.
type ProfileServiceInterface interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, input services.UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// ProfileHandler handles the authenticated user's own profile
type ProfileHandler struct {
	service      ProfileServiceInterface
	sessions     SessionRevoker
	cookieConfig auth.CookieConfig
}

// SessionRevoker revokes sessions when an account ceases to exist.
type SessionRevoker interface {
	DestroyAllForUser(ctx context.Context, userID string) error
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service ProfileServiceInterface, sessions SessionRevoker, cookieConfig auth.CookieConfig) *ProfileHandler {
	return &ProfileHandler{
		service:      service,
		sessions:     sessions,
		cookieConfig: cookieConfig,
	}
}

// UpdateProfileRequest is a partial profile edit. Absent fields stay as they
// are; role and status are not accepted here at all.
type UpdateProfileRequest struct {
	FirstName    *string  `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName     *string  `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone        *string  `json:"phone" validate:"omitempty,min=6,max=30"`
	BirthDate    *string  `json:"birth_date"`
	Province     *string  `json:"province"`
	Municipality *string  `json:"municipality"`
	Neighborhood *string  `json:"neighborhood"`
	Services     []string `json:"services" validate:"omitempty,min=1,dive,min=1"`
	ContractType *string  `json:"contract_type"`
	Availability *string  `json:"availability"`
	FacebookURL  *string  `json:"facebook_url" validate:"omitempty,url|eq="`
	InstagramURL *string  `json:"instagram_url" validate:"omitempty,url|eq="`
	TikTokURL    *string  `json:"tiktok_url" validate:"omitempty,url|eq="`
	AvatarURL    *string  `json:"avatar_url" validate:"omitempty,url|eq="`
}

// Get returns the authenticated user's own profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Update applies a partial edit to the caller's own profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input := services.UpdateUserInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
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

	if req.BirthDate != nil {
		birthDate, err := time.Parse(birthDateLayout, *req.BirthDate)
		if err != nil {
			pkghttp.WriteBadRequest(w, "birth_date must be formatted as YYYY-MM-DD")
			return
		}
		input.BirthDate = &birthDate
	}

	updated, err := h.service.Update(r.Context(), user.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// Delete removes the caller's own account, revokes its sessions, and clears
// the cookie. Conversations and messages go with the account.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	if err := h.service.Delete(r.Context(), user.ID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	// Sessions are FK-cascaded with the account row; this only clears any
	// store that is not the database.
	_ = h.sessions.DestroyAllForUser(r.Context(), user.ID)

	auth.ClearSessionCookie(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}
