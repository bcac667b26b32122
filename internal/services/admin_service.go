package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jikulumessu/api/internal/models"
)

// AdminLogRepository defines the interface for the append-only admin audit
// trail. There is deliberately no update or delete.
type AdminLogRepository interface {
	Append(ctx context.Context, log *models.AdminLog) (*models.AdminLog, error)
	List(ctx context.Context, limit, offset int) ([]*models.AdminLog, error)
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*models.AdminLog, error)
}

// SettingsRepository defines the interface for site settings access
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Update(ctx context.Context, s *models.SiteSettings) (*models.SiteSettings, error)
}

// AdminUserRepository extends the user repository with the aggregate queries
// only the back-office needs.
type AdminUserRepository interface {
	UserRepository
	CountTotal(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.Status) (int64, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// ActionContext identifies the administrator performing a privileged
// mutation, for the audit trail.
type ActionContext struct {
	ActorID   string
	IPAddress string
	UserAgent string
}

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	SuspendedUsers int64 `json:"suspended_users"`
	InactiveUsers  int64 `json:"inactive_users"`
	Admins         int64 `json:"admins"`
	SuperAdmins    int64 `json:"super_admins"`
}

// AdminService handles back-office operations. Every mutation appends an
// admin_logs row before returning.
type AdminService struct {
	users    AdminUserRepository
	logs     AdminLogRepository
	settings SettingsRepository
	sessions SessionIssuer
	logger   *slog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(users AdminUserRepository, logs AdminLogRepository, settings SettingsRepository, sessions SessionIssuer, logger *slog.Logger) *AdminService {
	return &AdminService{
		users:    users,
		logs:     logs,
		settings: settings,
		sessions: sessions,
		logger:   logger,
	}
}

// ListUsers returns the full directory, paginated, newest first.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	return users, nil
}

// ChangeRole sets a user's role and records the change.
func (s *AdminService) ChangeRole(ctx context.Context, actor ActionContext, userID string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role %q", models.ErrBadRequest, role)
	}

	user, err := s.loadTarget(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.Role
	if previous == role {
		return user, nil
	}

	user.Role = role
	updated, err := s.users.Update(ctx, userID, user)
	if err != nil {
		s.logger.Error("failed to change role", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	s.appendLog(ctx, actor, models.AdminActionRoleChange, models.AdminTargetUser, userID, models.AdminLogDetails{
		"from": string(previous),
		"to":   string(role),
	})
	return updated, nil
}

// ChangeStatus sets a user's status and records the change.
func (s *AdminService) ChangeStatus(ctx context.Context, actor ActionContext, userID string, status models.Status) (*models.User, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, status)
	}

	user, err := s.loadTarget(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.Status
	if previous == status {
		return user, nil
	}

	user.Status = status
	updated, err := s.users.Update(ctx, userID, user)
	if err != nil {
		s.logger.Error("failed to change status", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	if status == models.StatusSuspended {
		if err := s.sessions.DestroyAllForUser(ctx, userID); err != nil {
			s.logger.Warn("failed to revoke sessions for suspended user", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	s.appendLog(ctx, actor, models.AdminActionStatusChange, models.AdminTargetUser, userID, models.AdminLogDetails{
		"from": string(previous),
		"to":   string(status),
	})
	return updated, nil
}

// DeleteUser force-deletes an account. Sessions, conversations, and messages
// go with it via the FK cascades; the audit row survives because admin_logs
// carries no FK on the target.
func (s *AdminService) DeleteUser(ctx context.Context, actor ActionContext, userID string) error {
	user, err := s.loadTarget(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrUnavailable
	}

	s.appendLog(ctx, actor, models.AdminActionUserDelete, models.AdminTargetUser, userID, models.AdminLogDetails{
		"role":   string(user.Role),
		"status": string(user.Status),
		"name":   user.Name(),
	})
	return nil
}

// ListLogs returns the audit trail, newest first, optionally filtered by
// actor.
func (s *AdminService) ListLogs(ctx context.Context, actorID string, limit, offset int) ([]*models.AdminLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var (
		logs []*models.AdminLog
		err  error
	)
	if actorID != "" {
		logs, err = s.logs.ListByActor(ctx, actorID, limit, offset)
	} else {
		logs, err = s.logs.List(ctx, limit, offset)
	}
	if err != nil {
		s.logger.Error("failed to list admin logs", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	return logs, nil
}

// GetSettings returns the current site settings.
func (s *AdminService) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error("failed to get settings", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	return settings, nil
}

// UpdateSettings replaces the site settings and records before/after values.
func (s *AdminService) UpdateSettings(ctx context.Context, actor ActionContext, next models.SiteSettings) (*models.SiteSettings, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error("failed to get settings", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	updated, err := s.settings.Update(ctx, &next)
	if err != nil {
		s.logger.Error("failed to update settings", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	s.appendLog(ctx, actor, models.AdminActionSettings, models.AdminTargetSettings, "site", models.AdminLogDetails{
		"maintenance_mode_from":  fmt.Sprintf("%t", current.MaintenanceMode),
		"maintenance_mode_to":    fmt.Sprintf("%t", updated.MaintenanceMode),
		"registration_open_from": fmt.Sprintf("%t", current.RegistrationOpen),
		"registration_open_to":   fmt.Sprintf("%t", updated.RegistrationOpen),
		"messaging_enabled_from": fmt.Sprintf("%t", current.MessagingEnabled),
		"messaging_enabled_to":   fmt.Sprintf("%t", updated.MessagingEnabled),
	})
	return updated, nil
}

// Stats returns the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}

	type counter struct {
		dest  *int64
		count func(context.Context) (int64, error)
	}
	counters := []counter{
		{&stats.TotalUsers, s.users.CountTotal},
		{&stats.ActiveUsers, func(ctx context.Context) (int64, error) { return s.users.CountByStatus(ctx, models.StatusActive) }},
		{&stats.SuspendedUsers, func(ctx context.Context) (int64, error) { return s.users.CountByStatus(ctx, models.StatusSuspended) }},
		{&stats.InactiveUsers, func(ctx context.Context) (int64, error) { return s.users.CountByStatus(ctx, models.StatusInactive) }},
		{&stats.Admins, func(ctx context.Context) (int64, error) { return s.users.CountByRole(ctx, models.RoleAdmin) }},
		{&stats.SuperAdmins, func(ctx context.Context) (int64, error) { return s.users.CountByRole(ctx, models.RoleSuperAdmin) }},
	}
	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			s.logger.Error("failed to compute stats", slog.Any("error", err))
			return nil, models.ErrUnavailable
		}
		*c.dest = n
	}

	return stats, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *AdminService) loadTarget(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	return user, nil
}

// appendLog writes the audit row. A failure here is logged loudly but does
// not roll back the mutation; the application log keeps the record.
func (s *AdminService) appendLog(ctx context.Context, actor ActionContext, action, targetType, targetID string, details models.AdminLogDetails) {
	_, err := s.logs.Append(ctx, &models.AdminLog{
		ActorID:    actor.ActorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IPAddress:  nullable(actor.IPAddress),
		UserAgent:  nullable(actor.UserAgent),
	})
	if err != nil {
		s.logger.Error("failed to append admin log",
			slog.String("action", action),
			slog.String("target_id", targetID),
			slog.Any("error", err))
	}
}
