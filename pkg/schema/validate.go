package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
)

const dateLayout = "2006-01-02"

// ValidateRecord checks a set of field values against the definition and
// fails with a bad request error on the first violation. Partial mode skips
// the required field check, matching the semantics of a patch where absent
// fields keep their stored values.
func ValidateRecord(def Definition, fields map[string]any, partial bool) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := def.Fields[name]; !ok {
			return crderrors.NewBadRequestError(fmt.Sprintf("entity %s has no field named %s", def.Name, name))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if !partial {
		for _, name := range def.FieldNames() {
			spec := def.Fields[name]
			if !spec.Required {
				continue
			}

			if value, ok := fields[name]; !ok || value == nil {
				return crderrors.NewBadRequestError(fmt.Sprintf("field %s is required", name))
			}
		}
	}

	for _, name := range names {
		value := fields[name]
		spec := def.Fields[name]

		if value == nil {
			if spec.Nullable {
				continue
			}
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must not be null", name))
		}

		if err := validateValue(name, spec, value); err != nil {
			return err
		}
	}

	return nil
}

func validateValue(name string, spec FieldSpec, value any) error {
	switch spec.Type {
	case FieldTypeString, FieldTypeText:
		s, ok := value.(string)
		if !ok {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be a string", name))
		}

		if spec.MaxLength > 0 && utf8.RuneCountInString(s) > spec.MaxLength {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must not exceed %d characters", name, spec.MaxLength))
		}

		if len(spec.Enum) > 0 && !contains(spec.Enum, s) {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be one of %s", name, strings.Join(spec.Enum, ", ")))
		}
	case FieldTypeInteger:
		switch v := value.(type) {
		case int, int64:
		case float64:
			if v != math.Trunc(v) {
				return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be an integer", name))
			}
		default:
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be an integer", name))
		}
	case FieldTypeDecimal:
		switch value.(type) {
		case int, int64, float64:
		default:
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be a number", name))
		}
	case FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be a boolean", name))
		}
	case FieldTypeDateTime:
		s, ok := value.(string)
		if !ok {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be an RFC 3339 timestamp", name))
		}

		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be an RFC 3339 timestamp", name))
		}
	case FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be a date on the form %s", name, dateLayout))
		}

		if _, err := time.Parse(dateLayout, s); err != nil {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be a date on the form %s", name, dateLayout))
		}
	case FieldTypeUUID:
		s, ok := value.(string)
		if !ok {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be a valid uuid", name))
		}

		if _, err := uuid.Parse(s); err != nil {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be a valid uuid", name))
		}
	case FieldTypeJSON:
		// any shape goes
	}

	return nil
}

// ApplyDefaults returns a copy of the fields with declared defaults filled
// in for fields that are absent.
func ApplyDefaults(def Definition, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		out[name] = value
	}

	for name, spec := range def.Fields {
		if spec.Default == nil {
			continue
		}

		if _, ok := out[name]; !ok {
			out[name] = normalizeYAMLValue(spec.Default)
		}
	}

	return out
}

// normalizeYAMLValue rewrites the map types produced by the yaml decoder
// into ones the json encoder accepts.
func normalizeYAMLValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprintf("%v", key)] = normalizeYAMLValue(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, val := range v {
			out = append(out, normalizeYAMLValue(val))
		}
		return out
	default:
		return v
	}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}
