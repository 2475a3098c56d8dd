package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-api/internal/api/envelope"
	"github.com/spec-kit/ticket-api/internal/api/router"
	"github.com/spec-kit/ticket-api/internal/observability"
)

// Adapt serves a fiber request through the dispatcher.
func Adapt(d *router.Dispatcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := d.Handle(c.UserContext(), toRequest(c))
		c.Locals(observability.RouteLocal, resp.Route)
		return writeResponse(c, resp)
	}
}

func toRequest(c *fiber.Ctx) envelope.Request {
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})
	// fasthttp reuses the body buffer after the handler returns.
	body := append([]byte(nil), c.Body()...)
	return envelope.Request{
		Method:  c.Method(),
		Path:    c.Path(),
		Headers: headers,
		Body:    body,
	}
}

func writeResponse(c *fiber.Ctx, resp envelope.Response) error {
	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	c.Status(resp.StatusCode)
	if len(resp.Body) == 0 {
		return nil
	}
	return c.Send(resp.Body)
}
