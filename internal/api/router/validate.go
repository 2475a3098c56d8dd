package router

import (
	"context"

	"github.com/spec-kit/ticket-api/internal/api/envelope"
	"github.com/spec-kit/ticket-api/internal/validation"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// Source selects which part of the request a validator reads.
type Source int

const (
	SourceBody Source = iota
	SourceParams
)

// TypedHandler receives a validated value and the original request.
type TypedHandler[T any] func(ctx context.Context, value T, req envelope.Request) (envelope.Response, error)

// ParamsAndBody is the value passed to handlers validated by WithParamsAndBody.
type ParamsAndBody[P, B any] struct {
	Params P
	Body   B
}

// WithValidation runs the validator against the chosen source and calls next
// only when the payload is valid.
func WithValidation[T any](source Source, v *validation.Validator[T], next TypedHandler[T]) envelope.HandlerFunc {
	return func(ctx context.Context, req envelope.Request) (envelope.Response, error) {
		raw, err := extract(source, req)
		if err != nil {
			return envelope.Response{}, err
		}
		value, err := v.Validate(raw)
		if err != nil {
			return envelope.Response{}, err
		}
		return next(ctx, value, req)
	}
}

// WithBody validates the JSON body.
func WithBody[T any](v *validation.Validator[T], next TypedHandler[T]) envelope.HandlerFunc {
	return WithValidation(SourceBody, v, next)
}

// WithParams validates the path parameters.
func WithParams[T any](v *validation.Validator[T], next TypedHandler[T]) envelope.HandlerFunc {
	return WithValidation(SourceParams, v, next)
}

// WithParamsAndBody validates path parameters and body in one pass and reports
// the violations of both. A malformed body fails before either schema runs.
func WithParamsAndBody[P, B any](pv *validation.Validator[P], bv *validation.Validator[B], next TypedHandler[ParamsAndBody[P, B]]) envelope.HandlerFunc {
	return func(ctx context.Context, req envelope.Request) (envelope.Response, error) {
		rawBody, err := extract(SourceBody, req)
		if err != nil {
			return envelope.Response{}, err
		}
		cleanParams, paramViolations := pv.Check(validation.Params(req.PathParameters))
		cleanBody, bodyViolations := bv.Check(rawBody)

		switch {
		case len(bodyViolations) > 0:
			return envelope.Response{}, apperrors.NewValidationError(bv.Context(), append(paramViolations, bodyViolations...))
		case len(paramViolations) > 0:
			return envelope.Response{}, apperrors.NewValidationError(pv.Context(), paramViolations)
		}

		params, err := pv.Bind(cleanParams)
		if err != nil {
			return envelope.Response{}, err
		}
		body, err := bv.Bind(cleanBody)
		if err != nil {
			return envelope.Response{}, err
		}
		return next(ctx, ParamsAndBody[P, B]{Params: params, Body: body}, req)
	}
}

func extract(source Source, req envelope.Request) (map[string]any, error) {
	if source == SourceParams {
		return validation.Params(req.PathParameters), nil
	}
	raw, err := validation.DecodeObject(req.Body)
	if err != nil {
		return nil, apperrors.NewMalformedBody(err)
	}
	return raw, nil
}
