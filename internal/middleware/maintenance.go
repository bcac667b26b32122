package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/models"
	pkghttp "github.com/jikulumessu/api/pkg/http"
)

// SettingsSource reads the current site settings.
type SettingsSource interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
}

// SettingsCache wraps a SettingsSource with a short TTL so the gate
// middlewares do not hit the database on every request. A settings change
// takes effect within the TTL.
type SettingsCache struct {
	source SettingsSource
	ttl    time.Duration

	mu        sync.Mutex
	cached    *models.SiteSettings
	fetchedAt time.Time
}

// NewSettingsCache creates a settings cache with the given TTL.
func NewSettingsCache(source SettingsSource, ttl time.Duration) *SettingsCache {
	return &SettingsCache{source: source, ttl: ttl}
}

// Get returns the cached settings, refreshing them when stale.
func (c *SettingsCache) Get(ctx context.Context) (*models.SiteSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.cached, nil
	}

	settings, err := c.source.Get(ctx)
	if err != nil {
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, err
	}

	c.cached = settings
	c.fetchedAt = time.Now()
	return settings, nil
}

// Maintenance returns 503 for all traffic while maintenance mode is on.
// Administrators pass through so they can turn it off again; a settings read
// failure keeps the site up.
func Maintenance(settings SettingsSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current, err := settings.Get(r.Context())
			if err == nil && current.MaintenanceMode {
				if user := auth.GetUserFromContext(r); !auth.IsAdmin(user) {
					pkghttp.WriteUnavailable(w, "The site is under maintenance")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Feature toggles controlled through the site settings.
const (
	FeatureRegistration = "registration"
	FeatureMessaging    = "messaging"
)

// RequireFeature rejects requests while the named feature is switched off.
func RequireFeature(settings SettingsSource, feature string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current, err := settings.Get(r.Context())
			if err == nil {
				switch feature {
				case FeatureRegistration:
					if !current.RegistrationOpen {
						pkghttp.WriteForbidden(w, "Registration is currently closed")
						return
					}
				case FeatureMessaging:
					if !current.MessagingEnabled {
						pkghttp.WriteUnavailable(w, "Messaging is temporarily disabled")
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
