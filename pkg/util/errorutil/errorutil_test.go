package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    string
		status  int
		message string
	}{
		{"ticket not found", NewTicketNotFound("t-1"), CodeTicketNotFound, http.StatusNotFound, "Ticket with id t-1 not found"},
		{"path not found", NewPathNotFound("GET", "/widgets"), CodePathNotFound, http.StatusNotFound, "No route for GET /widgets"},
		{"unauthorized", NewUnauthorized("token expired"), CodeUnauthorized, http.StatusUnauthorized, "token expired"},
		{"internal", NewInternalError(errors.New("disk full")), CodeInternal, http.StatusInternalServerError, "Internal server error"},
		{"malformed body", NewMalformedBody(errors.New("unexpected EOF")), CodeBadRequest, http.StatusBadRequest, "Malformed JSON in request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
			assert.Equal(t, tc.message, de.Message)
			assert.True(t, IsCode(tc.err, tc.code))
		})
	}
}

func TestToDomainError_WrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	de := ToDomainError(cause)

	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, "Internal server error", de.Message)
	assert.ErrorIs(t, de, cause)
	assert.Nil(t, ToDomainError(nil))
}

func TestIsCode(t *testing.T) {
	wrapped := fmt.Errorf("delete: %w", NewTicketNotFound("t-1"))

	assert.True(t, IsCode(wrapped, CodeTicketNotFound))
	assert.False(t, IsCode(wrapped, CodePathNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeInternal))
	assert.False(t, IsCode(nil, CodeInternal))
}
