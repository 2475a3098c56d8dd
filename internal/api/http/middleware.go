package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/api/envelope"
	"github.com/spec-kit/ticket-api/internal/observability"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// MiddlewareConfig bundles dependencies of the global middlewares.
type MiddlewareConfig struct {
	Logger             *zap.Logger
	Metrics            *observability.Metrics
	Builder            *envelope.Builder
	Timeout            time.Duration
	RateLimitPerMinute int
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics, cfg.Builder))
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	if cfg.RateLimitPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMinute,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
			},
		}))
	}
}

// ErrorHandler renders errors escaping fiber handlers in the ticket error shape.
func ErrorHandler(builder *envelope.Builder) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeResponse(c, builder.Error(toDomainError(err)))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, builder *envelope.Builder) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(observability.RouteLabel(c), c.Method(), domainErr.Code)
				if apperrors.IsCode(domainErr, apperrors.CodeInternal) {
					logger.Error("request failed", zap.Error(err))
				}
				err = writeResponse(c, builder.Error(domainErr))
			}
		}()
		return c.Next()
	}
}

// toDomainError keeps the status of fiber errors such as 429 from the limiter.
func toDomainError(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := apperrors.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = apperrors.CodePathNotFound
		case fiber.StatusTooManyRequests:
			code = "too_many_requests"
		default:
			if fe.Code < 500 {
				code = apperrors.CodeBadRequest
			}
		}
		return apperrors.NewDomainError(code, fe.Message, fe.Code, nil)
	}
	return apperrors.ToDomainError(err)
}
