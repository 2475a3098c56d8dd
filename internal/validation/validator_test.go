package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-api/internal/domain"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

func details(t *testing.T, err error) []apperrors.FieldError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, 400, de.HTTPStatus)
	require.Equal(t, apperrors.CodeBadRequest, de.Code)
	return de.Details
}

func codesByField(fes []apperrors.FieldError) map[string]string {
	out := make(map[string]string, len(fes))
	for _, fe := range fes {
		out[fe.Field] = fe.Code
	}
	return out
}

func TestCreateTicket_AppliesDefaultsAndTrims(t *testing.T) {
	reporter := uuid.NewString()
	req, err := CreateTicket.Validate(map[string]any{
		"title":       "  Bug  ",
		"description": "\tdesc\n",
		"reporterId":  reporter,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bug", req.Title)
	assert.Equal(t, "desc", req.Description)
	assert.Equal(t, reporter, req.ReporterID)
	assert.Nil(t, req.AssignedToID)
	assert.Equal(t, domain.TicketStatusNew, req.Status)
	assert.Equal(t, domain.TicketPriorityMedium, req.Priority)
	assert.Equal(t, domain.TicketTypeIncident, req.Type)
}

func TestCreateTicket_KeepsSuppliedEnums(t *testing.T) {
	req, err := CreateTicket.Validate(map[string]any{
		"title":        "Printer",
		"description":  "jammed",
		"reporterId":   uuid.NewString(),
		"assignedToId": nil,
		"status":       "OPEN",
		"priority":     "CRITICAL",
		"type":         "SERVICE_REQUEST",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, req.Status)
	assert.Equal(t, domain.TicketPriorityCritical, req.Priority)
	assert.Equal(t, domain.TicketTypeServiceRequest, req.Type)
	assert.Nil(t, req.AssignedToID)
}

func TestCreateTicket_ReportsEveryViolation(t *testing.T) {
	_, err := CreateTicket.Validate(map[string]any{
		"title":       "   ",
		"description": 42.0,
		"reporterId":  "not-a-uuid",
		"status":      "DONE",
		"extra":       true,
	})
	fes := details(t, err)
	assert.Equal(t, "Validation failed for create ticket", apperrors.ToDomainError(err).Message)

	assert.Equal(t, map[string]string{
		"title":       CodeTooSmall,
		"description": CodeInvalidType,
		"reporterId":  CodeInvalidUUID,
		"status":      CodeInvalidEnum,
		"extra":       CodeUnrecognizedKeys,
	}, codesByField(fes))

	// schema order first, unknown keys last
	assert.Equal(t, "title", fes[0].Field)
	assert.Equal(t, "extra", fes[len(fes)-1].Field)
}

func TestCreateTicket_MissingRequired(t *testing.T) {
	_, err := CreateTicket.Validate(map[string]any{})
	fes := details(t, err)
	assert.Equal(t, map[string]string{
		"title":       CodeRequired,
		"description": CodeRequired,
		"reporterId":  CodeRequired,
	}, codesByField(fes))
}

func TestCreateTicket_TooBig(t *testing.T) {
	tests := []struct {
		name  string
		field string
		size  int
	}{
		{name: "title", field: "title", size: TitleMaxLength + 1},
		{name: "description", field: "description", size: DescriptionMaxLength + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := map[string]any{
				"title":       "ok",
				"description": "ok",
				"reporterId":  uuid.NewString(),
			}
			payload[tt.field] = strings.Repeat("x", tt.size)
			fes := details(t, func() error { _, err := CreateTicket.Validate(payload); return err }())
			require.Len(t, fes, 1)
			assert.Equal(t, tt.field, fes[0].Field)
			assert.Equal(t, CodeTooBig, fes[0].Code)
		})
	}
}

func TestCreateTicket_LengthCountedAfterTrim(t *testing.T) {
	_, err := CreateTicket.Validate(map[string]any{
		"title":       "  " + strings.Repeat("x", TitleMaxLength) + "  ",
		"description": "d",
		"reporterId":  uuid.NewString(),
	})
	assert.NoError(t, err)
}

func TestEnumMessageNamesAllowedValues(t *testing.T) {
	_, err := CreateTicket.Validate(map[string]any{
		"title":       "t",
		"description": "d",
		"reporterId":  uuid.NewString(),
		"priority":    "URGENT",
	})
	fes := details(t, err)
	require.Len(t, fes, 1)
	for _, p := range domain.TicketPriorities {
		assert.Contains(t, fes[0].Message, p)
	}
}

func TestUpdateTicket_RequiresEveryField(t *testing.T) {
	_, err := UpdateTicket.Validate(map[string]any{"title": "only"})
	fes := details(t, err)
	assert.Equal(t, map[string]string{
		"description":  CodeRequired,
		"status":       CodeRequired,
		"priority":     CodeRequired,
		"type":         CodeRequired,
		"assignedToId": CodeRequired,
	}, codesByField(fes))
}

func TestUpdateTicket_RejectsImmutableKeys(t *testing.T) {
	_, err := UpdateTicket.Validate(map[string]any{
		"title":        "t",
		"description":  "d",
		"status":       "OPEN",
		"priority":     "LOW",
		"type":         "QUESTION",
		"assignedToId": nil,
		"reporterId":   uuid.NewString(),
	})
	fes := details(t, err)
	require.Len(t, fes, 1)
	assert.Equal(t, "reporterId", fes[0].Field)
	assert.Equal(t, CodeUnrecognizedKeys, fes[0].Code)
}

func TestPatchTicket_EmptyPayload(t *testing.T) {
	_, err := PatchTicket.Validate(map[string]any{})
	fes := details(t, err)
	require.Len(t, fes, 1)
	assert.Equal(t, CodeEmptyUpdate, fes[0].Code)
}

func TestPatchTicket_DistinguishesNullFromAbsent(t *testing.T) {
	cleared, err := PatchTicket.Validate(map[string]any{"assignedToId": nil})
	require.NoError(t, err)
	assert.True(t, cleared.AssignedToID.Set)
	assert.Nil(t, cleared.AssignedToID.Value)
	assert.Nil(t, cleared.Status)

	status, err := PatchTicket.Validate(map[string]any{"status": "CLOSED"})
	require.NoError(t, err)
	assert.False(t, status.AssignedToID.Set)
	require.NotNil(t, status.Status)
	assert.Equal(t, domain.TicketStatusClosed, *status.Status)
	assert.Nil(t, status.Title)
}

func TestPatchTicket_NullOnNonNullableField(t *testing.T) {
	_, err := PatchTicket.Validate(map[string]any{"title": nil})
	fes := details(t, err)
	require.Len(t, fes, 1)
	assert.Equal(t, CodeInvalidType, fes[0].Code)
	assert.Equal(t, "Expected string, received null", fes[0].Message)
}

func TestTicketID(t *testing.T) {
	id := uuid.NewString()
	params, err := TicketID.Validate(Params(map[string]string{"id": id}))
	require.NoError(t, err)
	assert.Equal(t, id, params.ID)

	fes := details(t, func() error { _, err := TicketID.Validate(Params(map[string]string{"id": "123"})); return err }())
	require.Len(t, fes, 1)
	assert.Equal(t, CodeInvalidUUID, fes[0].Code)
}

func TestUUIDFieldsAreCanonicalized(t *testing.T) {
	id := uuid.NewString()
	upper := strings.ToUpper(id)

	cases := []struct {
		name string
		run  func() (string, error)
	}{
		{"path id", func() (string, error) {
			p, err := TicketID.Validate(Params(map[string]string{"id": upper}))
			return p.ID, err
		}},
		{"reporterId", func() (string, error) {
			c, err := CreateTicket.Validate(map[string]any{"title": "a", "description": "b", "reporterId": upper})
			return c.ReporterID, err
		}},
		{"assignedToId", func() (string, error) {
			p, err := PatchTicket.Validate(map[string]any{"assignedToId": upper})
			if p.AssignedToID.Value == nil {
				return "", err
			}
			return *p.AssignedToID.Value, err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.run()
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
}

func TestDecodeObject(t *testing.T) {
	raw, err := DecodeObject(nil)
	require.NoError(t, err)
	assert.Empty(t, raw)

	raw, err = DecodeObject([]byte(`{"title":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "x", raw["title"])

	for _, body := range []string{`{"title":`, `[]`, `"str"`, `null`, `12`} {
		_, err := DecodeObject([]byte(body))
		assert.Error(t, err, body)
	}
}
