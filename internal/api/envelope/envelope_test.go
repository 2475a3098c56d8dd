package envelope

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-api/internal/config"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

func TestBuilder_JSON(t *testing.T) {
	b := NewBuilder(config.DefaultCORS())

	resp, err := b.Created(map[string]string{"id": "1"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Contains(t, resp.Headers["Access-Control-Allow-Methods"], "DELETE")
	assert.NotContains(t, resp.Headers, "Access-Control-Max-Age")
	assert.JSONEq(t, `{"id":"1"}`, string(resp.Body))
}

func TestBuilder_NoContent(t *testing.T) {
	resp := NewBuilder(config.DefaultCORS()).NoContent()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.NotContains(t, resp.Headers, "Content-Type")
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}

func TestBuilder_Preflight(t *testing.T) {
	resp := NewBuilder(config.DefaultCORS()).Preflight()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "86400", resp.Headers["Access-Control-Max-Age"])
	assert.Equal(t, "Content-Type,Authorization", resp.Headers["Access-Control-Allow-Headers"])
}

func TestBuilder_Error(t *testing.T) {
	b := NewBuilder(config.DefaultCORS())

	validation := apperrors.ToDomainError(apperrors.NewValidationError("create ticket", []apperrors.FieldError{
		{Field: "title", Message: "title is required", Code: "REQUIRED"},
	}))
	resp := b.Error(validation)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{
		"code":"bad_request",
		"message":"Validation failed for create ticket",
		"details":[{"field":"title","message":"title is required","code":"REQUIRED"}]
	}`, string(resp.Body))

	internal := apperrors.ToDomainError(errors.New("dial tcp: connection refused"))
	resp = b.Error(internal)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	assert.Equal(t, apperrors.CodeInternal, body.Code)
	assert.NotContains(t, string(resp.Body), "connection refused")
	assert.Empty(t, body.Details)
}
