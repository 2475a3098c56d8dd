package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// Violation codes.
const (
	CodeRequired         = "REQUIRED"
	CodeInvalidType      = "INVALID_TYPE"
	CodeTooSmall         = "TOO_SMALL"
	CodeTooBig           = "TOO_BIG"
	CodeInvalidEnum      = "INVALID_ENUM"
	CodeInvalidUUID      = "INVALID_UUID"
	CodeUnrecognizedKeys = "UNRECOGNIZED_KEYS"
	CodeEmptyUpdate      = "EMPTY_UPDATE"
)

var validate = validator.New()

// Validator checks raw payloads against a schema and binds the result to T.
type Validator[T any] struct {
	schema Schema
}

// New builds a validator for the schema.
func New[T any](schema Schema) *Validator[T] {
	return &Validator[T]{schema: schema}
}

// Context names the schema in error messages.
func (v *Validator[T]) Context() string {
	return v.schema.Context
}

// Validate returns the typed, defaulted and trimmed value, or a validation
// error listing every violation.
func (v *Validator[T]) Validate(raw map[string]any) (T, error) {
	clean, violations := v.Check(raw)
	if len(violations) > 0 {
		var zero T
		return zero, apperrors.NewValidationError(v.schema.Context, violations)
	}
	return v.Bind(clean)
}

// Check evaluates the schema without binding, so callers can merge the
// violations of several schemas into one error.
func (v *Validator[T]) Check(raw map[string]any) (map[string]any, []apperrors.FieldError) {
	return check(v.schema, raw)
}

// Bind converts an already checked payload into T.
func (v *Validator[T]) Bind(clean map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(clean)
	if err != nil {
		return out, fmt.Errorf("encode %s: %w", v.schema.Context, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("bind %s: %w", v.schema.Context, err)
	}
	return out, nil
}

func check(schema Schema, raw map[string]any) (map[string]any, []apperrors.FieldError) {
	clean := make(map[string]any, len(schema.Fields))
	var violations []apperrors.FieldError
	supplied := 0

	for _, field := range schema.Fields {
		value, present := raw[field.Name]
		if !present {
			if field.Required {
				violations = append(violations, apperrors.FieldError{
					Field:   field.Name,
					Message: fmt.Sprintf("%s is required", field.Name),
					Code:    CodeRequired,
				})
			} else if field.Default != "" {
				clean[field.Name] = field.Default
			}
			continue
		}
		supplied++

		if value == nil {
			if field.Nullable {
				clean[field.Name] = nil
				continue
			}
			violations = append(violations, typeViolation(field.Name, value))
			continue
		}

		s, ok := value.(string)
		if !ok {
			violations = append(violations, typeViolation(field.Name, value))
			continue
		}
		switch field.Kind {
		case KindString:
			s = strings.TrimSpace(s)
		case KindUUID:
			// the uuid rule only accepts lowercase hex; ids are stored canonical
			s = strings.ToLower(s)
		}
		if fe, failed := checkRules(field, s); failed {
			violations = append(violations, fe)
			continue
		}
		clean[field.Name] = s
	}

	allowed := schema.allowed()
	var unknown []string
	for key := range raw {
		if _, ok := allowed[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		violations = append(violations, apperrors.FieldError{
			Field:   key,
			Message: fmt.Sprintf("Unrecognized key: '%s'", key),
			Code:    CodeUnrecognizedKeys,
		})
	}

	if schema.RequireAny && supplied == 0 {
		violations = append(violations, apperrors.FieldError{
			Field:   "",
			Message: "At least one field must be provided for update",
			Code:    CodeEmptyUpdate,
		})
	}
	return clean, violations
}

func checkRules(field Field, value string) (apperrors.FieldError, bool) {
	tag := field.rules()
	if tag == "" {
		return apperrors.FieldError{}, false
	}
	err := validate.Var(value, tag)
	if err == nil {
		return apperrors.FieldError{}, false
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.FieldError{Field: field.Name, Message: err.Error(), Code: CodeInvalidType}, true
	}
	fe := verrs[0]
	out := apperrors.FieldError{Field: field.Name}
	switch fe.Tag() {
	case "min":
		out.Code = CodeTooSmall
		out.Message = fmt.Sprintf("%s must contain at least %s character(s)", field.Name, fe.Param())
	case "max":
		out.Code = CodeTooBig
		out.Message = fmt.Sprintf("%s must contain at most %s character(s)", field.Name, fe.Param())
	case "oneof":
		out.Code = CodeInvalidEnum
		out.Message = fmt.Sprintf("Invalid %s. Expected %s, received '%s'", field.Name, quoteJoin(field.Enum), value)
	case "uuid":
		out.Code = CodeInvalidUUID
		out.Message = fmt.Sprintf("%s must be a valid UUID", field.Name)
	default:
		out.Code = strings.ToUpper(fe.Tag())
		out.Message = fmt.Sprintf("%s failed %s validation", field.Name, fe.Tag())
	}
	return out, true
}

func typeViolation(name string, value any) apperrors.FieldError {
	return apperrors.FieldError{
		Field:   name,
		Message: fmt.Sprintf("Expected string, received %s", jsonType(value)),
		Code:    CodeInvalidType,
	}
}

func jsonType(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, " | ")
}

// DecodeObject parses a request body into a JSON object. An empty body is an
// empty object; anything that is not an object is an error.
func DecodeObject(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return raw, nil
}

// Params converts path parameters to a raw payload.
func Params(params map[string]string) map[string]any {
	raw := make(map[string]any, len(params))
	for k, v := range params {
		raw[k] = v
	}
	return raw
}
