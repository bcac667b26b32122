package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/repositories"
	pkgauth "github.com/jikulumessu/api/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Search(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

const MinimumAge = 18

// CreateUserInput carries the fields accepted at registration or
// administrative creation. Password is optional; a user may exist without a
// local password.
type CreateUserInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Phone        string
	BirthDate    time.Time
	Province     string
	Municipality string
	Neighborhood string
	Services     []string
	ContractType string
	Availability string
	FacebookURL  string
	InstagramURL string
	TikTokURL    string
	AvatarURL    string
	Role         models.Role
	Status       models.Status
}

// UpdateUserInput carries a partial profile update. Nil fields are left
// untouched; empty-string URL fields are normalized to absent.
type UpdateUserInput struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	BirthDate    *time.Time
	Province     *string
	Municipality *string
	Neighborhood *string
	Services     []string
	ContractType *string
	Availability *string
	FacebookURL  *string
	InstagramURL *string
	TikTokURL    *string
	AvatarURL    *string
}

// UserService handles user directory business logic
type UserService struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (in *CreateUserInput) validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Availability = strings.TrimSpace(in.Availability)

	switch {
	case in.FirstName == "":
		return fmt.Errorf("%w: first name is required", models.ErrBadRequest)
	case in.LastName == "":
		return fmt.Errorf("%w: last name is required", models.ErrBadRequest)
	case in.Phone == "":
		return fmt.Errorf("%w: phone is required", models.ErrBadRequest)
	case in.BirthDate.IsZero():
		return fmt.Errorf("%w: birth date is required", models.ErrBadRequest)
	case in.Province == "":
		return fmt.Errorf("%w: province is required", models.ErrBadRequest)
	case in.Municipality == "":
		return fmt.Errorf("%w: municipality is required", models.ErrBadRequest)
	case in.Neighborhood == "":
		return fmt.Errorf("%w: neighborhood is required", models.ErrBadRequest)
	case in.ContractType == "":
		return fmt.Errorf("%w: contract type is required", models.ErrBadRequest)
	case len(in.Services) == 0:
		return fmt.Errorf("%w: at least one service is required", models.ErrBadRequest)
	case in.Availability == "":
		return fmt.Errorf("%w: availability is required", models.ErrBadRequest)
	}

	if age := ageAt(in.BirthDate, time.Now()); age < MinimumAge {
		return fmt.Errorf("%w: must be at least %d years old", models.ErrBadRequest, MinimumAge)
	}

	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Status == "" {
		in.Status = models.StatusActive
	}
	if !in.Role.Valid() {
		return fmt.Errorf("%w: invalid role %q", models.ErrBadRequest, in.Role)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, in.Status)
	}

	return nil
}

func ageAt(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	if birthDate.AddDate(years, 0, 0).After(now) {
		years--
	}
	return years
}

// normalizeURL maps blank URL fields to absent so empty strings are never
// stored.
func normalizeURL(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

// Create validates and persists a new user. A duplicate email surfaces as
// ErrDuplicateEmail; the unique index resolves concurrent creation races, so
// the pre-check here is only a fast path.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if input.Email != "" {
		_, err := s.repo.GetByEmail(ctx, input.Email)
		if err == nil {
			return nil, models.ErrDuplicateEmail
		}
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to check email uniqueness", slog.Any("error", err))
			return nil, models.ErrUnavailable
		}
	}

	user := &models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		BirthDate:    input.BirthDate,
		Province:     input.Province,
		Municipality: input.Municipality,
		Neighborhood: input.Neighborhood,
		Services:     input.Services,
		ContractType: input.ContractType,
		Availability: input.Availability,
		FacebookURL:  normalizeURL(input.FacebookURL),
		InstagramURL: normalizeURL(input.InstagramURL),
		TikTokURL:    normalizeURL(input.TikTokURL),
		AvatarURL:    normalizeURL(input.AvatarURL),
		Role:         input.Role,
		Status:       input.Status,
	}

	if input.Password != "" {
		if err := pkgauth.ValidatePassword(input.Password); err != nil {
			return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
		}
		hash, err := pkgauth.HashPassword(input.Password)
		if err != nil {
			s.logger.Error("failed to hash password", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		user.PasswordHash = hash
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a concurrent race on the email unique index.
			return nil, models.ErrDuplicateEmail
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	s.logger.Info("user created", slog.String("user_id", created.ID))
	return created, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	return user, nil
}

// FindByEmail retrieves a user by email, case-insensitively.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	return user, nil
}

// Update applies a partial profile edit. Role and status are not reachable
// through this path; they change only through the admin service.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user for update", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	if input.FirstName != nil {
		if v := strings.TrimSpace(*input.FirstName); v != "" {
			user.FirstName = v
		}
	}
	if input.LastName != nil {
		if v := strings.TrimSpace(*input.LastName); v != "" {
			user.LastName = v
		}
	}
	if input.Phone != nil {
		if v := strings.TrimSpace(*input.Phone); v != "" {
			user.Phone = v
		}
	}
	if input.BirthDate != nil {
		if ageAt(*input.BirthDate, time.Now()) < MinimumAge {
			return nil, fmt.Errorf("%w: must be at least %d years old", models.ErrBadRequest, MinimumAge)
		}
		user.BirthDate = *input.BirthDate
	}
	if input.Province != nil {
		v := strings.TrimSpace(*input.Province)
		if v == "" {
			return nil, fmt.Errorf("%w: province is required", models.ErrBadRequest)
		}
		user.Province = v
	}
	if input.Municipality != nil {
		v := strings.TrimSpace(*input.Municipality)
		if v == "" {
			return nil, fmt.Errorf("%w: municipality is required", models.ErrBadRequest)
		}
		user.Municipality = v
	}
	if input.Neighborhood != nil {
		v := strings.TrimSpace(*input.Neighborhood)
		if v == "" {
			return nil, fmt.Errorf("%w: neighborhood is required", models.ErrBadRequest)
		}
		user.Neighborhood = v
	}
	if input.Services != nil {
		if len(input.Services) == 0 {
			return nil, fmt.Errorf("%w: at least one service is required", models.ErrBadRequest)
		}
		user.Services = input.Services
	}
	if input.ContractType != nil {
		v := strings.TrimSpace(*input.ContractType)
		if v == "" {
			return nil, fmt.Errorf("%w: contract type is required", models.ErrBadRequest)
		}
		user.ContractType = v
	}
	if input.Availability != nil {
		v := strings.TrimSpace(*input.Availability)
		if v == "" {
			return nil, fmt.Errorf("%w: availability is required", models.ErrBadRequest)
		}
		user.Availability = v
	}
	if input.FacebookURL != nil {
		user.FacebookURL = normalizeURL(*input.FacebookURL)
	}
	if input.InstagramURL != nil {
		user.InstagramURL = normalizeURL(*input.InstagramURL)
	}
	if input.TikTokURL != nil {
		user.TikTokURL = normalizeURL(*input.TikTokURL)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = normalizeURL(*input.AvatarURL)
	}

	updated, err := s.repo.Update(ctx, id, user)
	if err != nil {
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	s.logger.Info("user updated", slog.String("user_id", id))
	return updated, nil
}

// Delete hard-deletes a user. Conversations and messages referencing the
// user are removed by the database cascade.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrUnavailable
	}

	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}

// SearchProviders returns active listings matching the public filter.
func (s *UserService) SearchProviders(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.Search(ctx, filter, limit, offset)
	if err != nil {
		s.logger.Error("failed to search providers", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	return users, nil
}
