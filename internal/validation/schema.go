package validation

import (
	"fmt"
	"strings"
)

// Kind selects how a raw value is checked.
type Kind int

const (
	KindString Kind = iota
	KindEnum
	KindUUID
)

// Field declares one key of a schema.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Nullable bool
	// Min and Max bound the trimmed length of KindString values; zero disables.
	Min     int
	Max     int
	Enum    []string
	Default string
}

// Schema is a strict object schema: keys outside Fields are rejected.
type Schema struct {
	Context string
	Fields  []Field
	// RequireAny rejects payloads that supply none of the fields.
	RequireAny bool
}

func (f Field) rules() string {
	switch f.Kind {
	case KindEnum:
		return "oneof=" + strings.Join(f.Enum, " ")
	case KindUUID:
		return "uuid"
	default:
		var parts []string
		if f.Min > 0 {
			parts = append(parts, fmt.Sprintf("min=%d", f.Min))
		}
		if f.Max > 0 {
			parts = append(parts, fmt.Sprintf("max=%d", f.Max))
		}
		return strings.Join(parts, ",")
	}
}

func (s Schema) allowed() map[string]struct{} {
	keys := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		keys[f.Name] = struct{}{}
	}
	return keys
}
