package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/repositories"
	pkghttp "github.com/jikulumessu/api/pkg/http"
)

// ProviderServiceInterface defines the interface for the public listing
// surface.
type ProviderServiceInterface interface {
	Get(ctx context.Context, id string) (*models.User, error)
	SearchProviders(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error)
}

// ProviderHandler serves the public provider directory
type ProviderHandler struct {
	service ProviderServiceInterface
}

// NewProviderHandler creates a new ProviderHandler
func NewProviderHandler(service ProviderServiceInterface) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// Search lists active providers filtered by location and service tag.
func (h *ProviderHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.SearchFilter{
		Province:     q.Get("province"),
		Municipality: q.Get("municipality"),
		Service:      q.Get("service"),
	}
	limit, offset := parsePagination(r)

	users, err := h.service.SearchProviders(r.Context(), filter, limit, offset)
	if err != nil {
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		return
	}

	providers := make([]*ProviderResponse, 0, len(users))
	for _, u := range users {
		providers = append(providers, toProviderResponse(u))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"providers": providers,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetProfile returns one public listing. Suspended and inactive accounts are
// indistinguishable from absent ones.
func (h *ProviderHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Provider not found")
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	if user.Status != models.StatusActive {
		pkghttp.WriteNotFound(w, "Provider not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toProviderResponse(user))
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
