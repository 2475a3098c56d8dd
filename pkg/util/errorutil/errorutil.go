package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes rendered in the response body.
const (
	CodeBadRequest     = "bad_request"
	CodeTicketNotFound = "ticket_not_found"
	CodePathNotFound   = "path_not_found"
	CodeUnauthorized   = "unauthorized"
	CodeInternal       = "internal_server_error"
)

// FieldError describes a single violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    []FieldError
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details []FieldError) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports schema violations found while validating the named context.
func NewValidationError(context string, details []FieldError) error {
	return NewDomainError(CodeBadRequest, fmt.Sprintf("Validation failed for %s", context), http.StatusBadRequest, details)
}

// NewMalformedBody is raised before schema evaluation when the body is not a JSON object.
func NewMalformedBody(err error) error {
	return &DomainError{
		Code:       CodeBadRequest,
		Message:    "Malformed JSON in request body",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewTicketNotFound reports a missing ticket id as 404.
func NewTicketNotFound(id string) error {
	return NewDomainError(CodeTicketNotFound, fmt.Sprintf("Ticket with id %s not found", id), http.StatusNotFound, nil)
}

// NewPathNotFound is returned when no route matches the method and path.
func NewPathNotFound(method, path string) error {
	return NewDomainError(CodePathNotFound, fmt.Sprintf("No route for %s %s", method, path), http.StatusNotFound, nil)
}

// NewUnauthorized rejects a request lacking valid credentials.
func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewInternalError hides err behind a generic 500 message. err is kept for logs.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Anything that is not
// already a DomainError becomes an internal error wrapping the cause.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
