package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/handlers"
	"github.com/jikulumessu/api/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	providerHandler *handlers.ProviderHandler,
	messageHandler *handlers.MessageHandler,
	adminHandler *handlers.AdminHandler,
	sessionManager *auth.SessionManager,
	cookieConfig auth.CookieConfig,
	settings middleware.SettingsSource,
) {
	authRate := middleware.DefaultAuthRateLimit()
	recoveryRate := middleware.DefaultRecoveryRateLimit()

	// Public routes
	router.With(
		middleware.Maintenance(settings),
		middleware.RequireFeature(settings, middleware.FeatureRegistration),
		middleware.RateLimitByIP(authRate),
	).Post("/auth/register", authHandler.Register)
	router.With(
		middleware.Maintenance(settings),
		middleware.RateLimitByIP(authRate),
	).Post("/auth/login", authHandler.Login)
	router.With(
		middleware.Maintenance(settings),
		middleware.RateLimitByIP(recoveryRate),
	).Post("/auth/recover", authHandler.Recover)
	router.With(
		middleware.Maintenance(settings),
		middleware.RateLimitByIP(recoveryRate),
	).Post("/auth/reset-password", authHandler.ResetPassword)

	// Logout works with or without a valid session.
	router.Post("/auth/logout", authHandler.Logout)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Maintenance(settings))
		r.Get("/providers", providerHandler.Search)
		r.Get("/providers/{id}", providerHandler.GetProfile)
	})

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticator(sessionManager, cookieConfig))
		r.Use(middleware.Maintenance(settings))

		r.Get("/auth/me", authHandler.Me)
		r.Post("/auth/change-password", authHandler.ChangePassword)

		r.Get("/profile", profileHandler.Get)
		r.Put("/profile", profileHandler.Update)
		r.Delete("/profile", profileHandler.Delete)

		r.Route("/messages", func(r chi.Router) {
			r.Use(middleware.RequireFeature(settings, middleware.FeatureMessaging))

			r.Get("/conversations", messageHandler.ListConversations)
			r.Post("/conversations", messageHandler.StartConversation)
			r.Get("/conversations/{id}/messages", messageHandler.ListMessages)
			r.Post("/conversations/{id}/messages", messageHandler.SendMessage)
			r.Delete("/{id}", messageHandler.DeleteMessage)
			r.Get("/unread-count", messageHandler.UnreadCount)
		})

		// Admin-only routes. Admins pass the maintenance gate, so the back
		// office stays reachable while the site is down.
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users/{id}/role", adminHandler.ChangeRole)
			r.Put("/users/{id}/status", adminHandler.ChangeStatus)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
			r.Get("/logs", adminHandler.ListLogs)
			r.Get("/stats", adminHandler.Stats)
			r.Get("/settings", adminHandler.GetSettings)
			r.Put("/settings", adminHandler.UpdateSettings)
		})
	})
}
