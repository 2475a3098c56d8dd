package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-api/internal/api/http/handlers"
	"github.com/spec-kit/ticket-api/internal/api/router"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Dispatcher *router.Dispatcher
}

// RegisterRoutes wires HTTP routes. Everything outside health and metrics goes
// through the ticket dispatcher, which owns matching, preflight and 404s.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.All("/*", Adapt(cfg.Dispatcher))
}
