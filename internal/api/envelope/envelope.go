package envelope

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/spec-kit/ticket-api/internal/config"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// Request is the transport-neutral inbound request.
type Request struct {
	Method         string
	Path           string
	PathParameters map[string]string
	Headers        map[string]string
	Body           []byte
}

// Param returns a path parameter or "".
func (r Request) Param(name string) string {
	if r.PathParameters == nil {
		return ""
	}
	return r.PathParameters[name]
}

// Response is the normalized outbound envelope.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	// Route is the matched pattern, used as a bounded metrics label. Never
	// written to the wire.
	Route string
}

// HandlerFunc serves one routed request.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// ErrorBody is the wire form of every error.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

// Builder formats every outward-facing response.
type Builder struct {
	cors config.CORSConfig
}

// NewBuilder returns a builder stamping the given CORS policy.
func NewBuilder(cors config.CORSConfig) *Builder {
	return &Builder{cors: cors}
}

// JSON serializes body with the given status.
func (b *Builder) JSON(status int, body any) (Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, apperrors.NewInternalError(err)
	}
	headers := b.corsHeaders()
	headers["Content-Type"] = "application/json"
	return Response{StatusCode: status, Headers: headers, Body: data}, nil
}

// OK is a 200 JSON response.
func (b *Builder) OK(body any) (Response, error) {
	return b.JSON(http.StatusOK, body)
}

// Created is a 201 JSON response.
func (b *Builder) Created(body any) (Response, error) {
	return b.JSON(http.StatusCreated, body)
}

// NoContent is a 204 with an empty body and no Content-Type.
func (b *Builder) NoContent() Response {
	return Response{StatusCode: http.StatusNoContent, Headers: b.corsHeaders()}
}

// Preflight answers CORS OPTIONS requests.
func (b *Builder) Preflight() Response {
	headers := b.corsHeaders()
	if b.cors.MaxAgeSeconds > 0 {
		headers["Access-Control-Max-Age"] = strconv.Itoa(b.cors.MaxAgeSeconds)
	}
	return Response{StatusCode: http.StatusOK, Headers: headers}
}

// Error renders a DomainError. The cause wrapped by internal errors is never
// written to the body.
func (b *Builder) Error(de *apperrors.DomainError) Response {
	body := ErrorBody{Code: de.Code, Message: de.Message, Details: de.Details}
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(`{"code":"` + apperrors.CodeInternal + `","message":"Internal server error"}`)
	}
	headers := b.corsHeaders()
	headers["Content-Type"] = "application/json"
	return Response{StatusCode: de.HTTPStatus, Headers: headers, Body: data}
}

func (b *Builder) corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  b.cors.AllowOrigin,
		"Access-Control-Allow-Headers": strings.Join(b.cors.AllowHeaders, ","),
		"Access-Control-Allow-Methods": strings.Join(b.cors.AllowMethods, ","),
	}
}
