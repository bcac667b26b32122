package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jikulumessu/api/internal/handlers"
	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/repositories"
	"github.com/jikulumessu/api/internal/services"
)

func TestProviderSearch_PassesFilter(t *testing.T) {
	var gotFilter repositories.SearchFilter
	var gotLimit, gotOffset int

	mock := &handlers.MockProviderService{
		SearchProvidersFunc: func(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error) {
			gotFilter = filter
			gotLimit = limit
			gotOffset = offset
			return []*models.User{services.NewTestUser("p1", "p@example.com", "Maria", "Jose")}, nil
		},
	}

	handler := handlers.NewProviderHandler(mock)
	req := handlers.NewTestRequest(t, "GET", "/providers?province=Luanda&municipality=Belas&service=limpeza&limit=10&offset=30", nil)

	w := httptest.NewRecorder()
	handler.Search(w, req)

	var resp struct {
		Providers []handlers.ProviderResponse `json:"providers"`
		Limit     int                         `json:"limit"`
		Offset    int                         `json:"offset"`
	}
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, repositories.SearchFilter{Province: "Luanda", Municipality: "Belas", Service: "limpeza"}, gotFilter)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, 30, gotOffset)
	assert.Len(t, resp.Providers, 1)
}

func TestProviderSearch_IgnoresBadPagination(t *testing.T) {
	var gotLimit, gotOffset int
	mock := &handlers.MockProviderService{
		SearchProvidersFunc: func(ctx context.Context, filter repositories.SearchFilter, limit, offset int) ([]*models.User, error) {
			gotLimit = limit
			gotOffset = offset
			return []*models.User{}, nil
		},
	}

	handler := handlers.NewProviderHandler(mock)
	req := handlers.NewTestRequest(t, "GET", "/providers?limit=9999&offset=-3", nil)

	w := httptest.NewRecorder()
	handler.Search(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 0, gotOffset)
}

func TestProviderProfile_Success(t *testing.T) {
	provider := services.NewTestUser("p1", "p@example.com", "Maria", "Jose")
	mock := &handlers.MockProviderService{
		GetFunc: func(ctx context.Context, id string) (*models.User, error) {
			assert.Equal(t, "p1", id)
			return provider, nil
		},
	}

	handler := handlers.NewProviderHandler(mock)
	req := handlers.NewTestRequest(t, "GET", "/providers/p1", nil)
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "p1"})

	w := httptest.NewRecorder()
	handler.GetProfile(w, req)

	var resp handlers.ProviderResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "p1", resp.ID)
}

func TestProviderProfile_PublicViewOmitsPrivateFields(t *testing.T) {
	provider := services.NewTestUser("p1", "p@example.com", "Maria", "Jose")
	mock := &handlers.MockProviderService{
		GetFunc: func(ctx context.Context, id string) (*models.User, error) {
			return provider, nil
		},
	}

	handler := handlers.NewProviderHandler(mock)
	req := handlers.NewTestRequest(t, "GET", "/providers/p1", nil)
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "p1"})

	w := httptest.NewRecorder()
	handler.GetProfile(w, req)

	assert.Equal(t, 200, w.Code)
	assert.NotContains(t, w.Body.String(), "p@example.com")
	assert.NotContains(t, w.Body.String(), `"role"`)
}

func TestProviderProfile_SuspendedLooksAbsent(t *testing.T) {
	for _, status := range []models.Status{models.StatusSuspended, models.StatusInactive} {
		t.Run(string(status), func(t *testing.T) {
			provider := services.NewTestUser("p1", "p@example.com", "Maria", "Jose")
			provider.Status = status
			mock := &handlers.MockProviderService{
				GetFunc: func(ctx context.Context, id string) (*models.User, error) {
					return provider, nil
				},
			}

			handler := handlers.NewProviderHandler(mock)
			req := handlers.NewTestRequest(t, "GET", "/providers/p1", nil)
			req = handlers.WithChiRouteContext(req, map[string]string{"id": "p1"})

			w := httptest.NewRecorder()
			handler.GetProfile(w, req)

			handlers.AssertErrorResponse(t, w, 404, "not_found")
		})
	}
}

func TestProviderProfile_NotFound(t *testing.T) {
	handler := handlers.NewProviderHandler(&handlers.MockProviderService{})
	req := handlers.NewTestRequest(t, "GET", "/providers/ghost", nil)
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "ghost"})

	w := httptest.NewRecorder()
	handler.GetProfile(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}
