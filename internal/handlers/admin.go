package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/services"
	pkghttp "github.com/jikulumessu/api/pkg/http"
)

// AdminServiceInterface defines the interface for back-office operations
type AdminServiceInterface interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	ChangeRole(ctx context.Context, actor services.ActionContext, userID string, role models.Role) (*models.User, error)
	ChangeStatus(ctx context.Context, actor services.ActionContext, userID string, status models.Status) (*models.User, error)
	DeleteUser(ctx context.Context, actor services.ActionContext, userID string) error
	ListLogs(ctx context.Context, actorID string, limit, offset int) ([]*models.AdminLog, error)
	GetSettings(ctx context.Context) (*models.SiteSettings, error)
	UpdateSettings(ctx context.Context, actor services.ActionContext, next models.SiteSettings) (*models.SiteSettings, error)
	Stats(ctx context.Context) (*services.AdminStats, error)
}

// AdminHandler handles back-office HTTP requests. Routes using it are gated
// by auth.RequireAdmin.
type AdminHandler struct {
	service  AdminServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service AdminServiceInterface, ipConfig *pkghttp.IPConfig) *AdminHandler {
	return &AdminHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// ChangeRoleRequest sets a user's role
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin super_admin"`
}

// ChangeStatusRequest sets a user's status
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended inactive"`
}

// UpdateSettingsRequest replaces the site settings
type UpdateSettingsRequest struct {
	MaintenanceMode  bool `json:"maintenance_mode"`
	RegistrationOpen bool `json:"registration_open"`
	MessagingEnabled bool `json:"messaging_enabled"`
}

// SettingsResponse is the wire form of the site settings.
type SettingsResponse struct {
	MaintenanceMode  bool      `json:"maintenance_mode"`
	RegistrationOpen bool      `json:"registration_open"`
	MessagingEnabled bool      `json:"messaging_enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toSettingsResponse(s *models.SiteSettings) *SettingsResponse {
	return &SettingsResponse{
		MaintenanceMode:  s.MaintenanceMode,
		RegistrationOpen: s.RegistrationOpen,
		MessagingEnabled: s.MessagingEnabled,
		UpdatedAt:        s.UpdatedAt,
	}
}

// AdminLogResponse is the wire form of an audit record.
type AdminLogResponse struct {
	ID         string                 `json:"id"`
	ActorID    string                 `json:"actor_id"`
	Action     string                 `json:"action"`
	TargetType string                 `json:"target_type"`
	TargetID   string                 `json:"target_id"`
	Details    map[string]interface{} `json:"details,omitempty"`
	IPAddress  *string                `json:"ip_address,omitempty"`
	UserAgent  *string                `json:"user_agent,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

func (h *AdminHandler) actionContext(r *http.Request) services.ActionContext {
	actor := auth.GetUserFromContext(r)
	ctx := services.ActionContext{
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.Header.Get("User-Agent"),
	}
	if actor != nil {
		ctx.ActorID = actor.ID
	}
	return ctx
}

// ListUsers returns the full directory, including suspended and inactive
// accounts.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		return
	}

	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users":  out,
		"limit":  limit,
		"offset": offset,
	})
}

// ChangeRole sets a user's role.
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	userID := chi.URLParam(r, "id")
	updated, err := h.service.ChangeRole(r.Context(), h.actionContext(r), userID, models.Role(req.Role))
	if err != nil {
		writeAdminError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// ChangeStatus sets a user's status.
func (h *AdminHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	userID := chi.URLParam(r, "id")
	updated, err := h.service.ChangeStatus(r.Context(), h.actionContext(r), userID, models.Status(req.Status))
	if err != nil {
		writeAdminError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// DeleteUser force-deletes an account and everything that hangs off it.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := h.service.DeleteUser(r.Context(), h.actionContext(r), userID); err != nil {
		writeAdminError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLogs returns the audit trail, newest first. The optional actor_id
// query parameter narrows it to one administrator.
func (h *AdminHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	actorID := r.URL.Query().Get("actor_id")

	logs, err := h.service.ListLogs(r.Context(), actorID, limit, offset)
	if err != nil {
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		return
	}

	out := make([]*AdminLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, &AdminLogResponse{
			ID:         l.ID,
			ActorID:    l.ActorID,
			Action:     l.Action,
			TargetType: l.TargetType,
			TargetID:   l.TargetID,
			Details:    l.Details,
			IPAddress:  l.IPAddress,
			UserAgent:  l.UserAgent,
			CreatedAt:  l.CreatedAt,
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":   out,
		"limit":  limit,
		"offset": offset,
	})
}

// GetSettings returns the current site settings.
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// UpdateSettings replaces the site settings.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateSettings(r.Context(), h.actionContext(r), models.SiteSettings{
		MaintenanceMode:  req.MaintenanceMode,
		RegistrationOpen: req.RegistrationOpen,
		MessagingEnabled: req.MessagingEnabled,
	})
	if err != nil {
		writeAdminError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toSettingsResponse(updated))
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

func writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "User not found")
	case errors.Is(err, models.ErrUnavailable):
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
