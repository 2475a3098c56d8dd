package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/api/envelope"
	"github.com/spec-kit/ticket-api/internal/api/http/handlers"
	"github.com/spec-kit/ticket-api/internal/api/router"
	"github.com/spec-kit/ticket-api/internal/observability"
)

// ServerConfig bundles everything needed to build the fiber app.
type ServerConfig struct {
	AppName            string
	Logger             *zap.Logger
	Metrics            *observability.Metrics
	Builder            *envelope.Builder
	Dispatcher         *router.Dispatcher
	Health             *handlers.HealthHandler
	Timeout            time.Duration
	RateLimitPerMinute int
}

// NewServer returns a fiber app with middlewares and routes registered.
func NewServer(cfg ServerConfig) *fiber.App {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(cfg.Builder),
	})
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:             cfg.Logger,
		Metrics:            cfg.Metrics,
		Builder:            cfg.Builder,
		Timeout:            cfg.Timeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	RegisterRoutes(app, RouteConfig{Health: cfg.Health, Dispatcher: cfg.Dispatcher})
	return app
}
