package lambda

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"

	"github.com/spec-kit/ticket-api/internal/api/envelope"
	"github.com/spec-kit/ticket-api/internal/api/router"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// ProxyHandler is the API Gateway proxy integration signature.
type ProxyHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// NewProxyHandler serves API Gateway proxy events through the dispatcher.
func NewProxyHandler(d *router.Dispatcher, builder *envelope.Builder) ProxyHandler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return toProxyResponse(builder.Error(apperrors.ToDomainError(apperrors.NewMalformedBody(err)))), nil
			}
			body = decoded
		}

		resp := d.Handle(ctx, envelope.Request{
			Method:  req.HTTPMethod,
			Path:    req.Path,
			Headers: req.Headers,
			Body:    body,
		})
		return toProxyResponse(resp), nil
	}
}

func toProxyResponse(resp envelope.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}
