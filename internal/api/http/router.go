package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Behnamfe76/docvault/internal/api/http/handlers"
	"github.com/Behnamfe76/docvault/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Documents      *handlers.DocumentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Get)

	authGroup := app.Group("/auth")
	authGroup.Get("/google/login", cfg.Auth.Login)
	authGroup.Get("/google/callback", cfg.Auth.Callback)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	documents := app.Group("/documents", cfg.AuthMiddleware.Handle)
	documents.Post("/", cfg.Documents.Upload)
	documents.Get("/", cfg.Documents.List)
	documents.Get("/url", cfg.Documents.PresignedURL)
	documents.Delete("/", cfg.Documents.Delete)
}
