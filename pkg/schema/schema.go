// Package schema loads and validates entity definitions. A definition names
// an entity and its fields; the id, created_at and updated_at fields are
// implicit on every entity and may not be declared.
package schema

import (
	"fmt"
	"io"
	"sort"

	yaml "gopkg.in/yaml.v2"

	"github.com/velosovictor/frontblok-crud/pkg/crud"
	"github.com/velosovictor/frontblok-crud/pkg/inflect"
)

const (
	FieldTypeString   = "string"
	FieldTypeText     = "text"
	FieldTypeInteger  = "integer"
	FieldTypeDecimal  = "decimal"
	FieldTypeBoolean  = "boolean"
	FieldTypeDateTime = "datetime"
	FieldTypeDate     = "date"
	FieldTypeUUID     = "uuid"
	FieldTypeJSON     = "json"
)

var knownFieldTypes = map[string]bool{
	FieldTypeString:   true,
	FieldTypeText:     true,
	FieldTypeInteger:  true,
	FieldTypeDecimal:  true,
	FieldTypeBoolean:  true,
	FieldTypeDateTime: true,
	FieldTypeDate:     true,
	FieldTypeUUID:     true,
	FieldTypeJSON:     true,
}

type FieldSpec struct {
	Type       string   `yaml:"type"`
	Required   bool     `yaml:"required"`
	Unique     bool     `yaml:"unique"`
	Nullable   bool     `yaml:"nullable"`
	MaxLength  int      `yaml:"max_length"`
	Enum       []string `yaml:"enum"`
	Default    any      `yaml:"default"`
	References string   `yaml:"references"`
}

type Definition struct {
	Name   string               `yaml:"name"`
	Fields map[string]FieldSpec `yaml:"fields"`
}

// FieldNames returns the declared field names in sorted order.
func (d Definition) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (d Definition) Field(name string) (FieldSpec, bool) {
	spec, ok := d.Fields[name]
	return spec, ok
}

type Config struct {
	Entities []Definition `yaml:"entities"`
}

// FindDefinition resolves an entity name to its definition. Both the
// declared name and its plural form are accepted, so a lookup works with
// the collection segment of a request path as well.
func (cfg *Config) FindDefinition(entityName string) (Definition, bool) {
	for _, def := range cfg.Entities {
		if def.Name == entityName || inflect.ToPlural(def.Name) == entityName {
			return def, true
		}
	}

	return Definition{}, false
}

// EntityNames returns the declared entity names in sorted order.
func (cfg *Config) EntityNames() []string {
	names := make([]string, 0, len(cfg.Entities))
	for _, def := range cfg.Entities {
		names = append(names, def.Name)
	}

	sort.Strings(names)

	return names
}

// Validate checks the definitions for internal consistency.
func (cfg *Config) Validate() error {
	if len(cfg.Entities) == 0 {
		return fmt.Errorf("schema contains no entities")
	}

	seen := map[string]bool{}

	for _, def := range cfg.Entities {
		if def.Name == "" {
			return fmt.Errorf("schema contains an entity without a name")
		}

		if inflect.ToSnakeCase(def.Name) != def.Name {
			return fmt.Errorf("entity name %s must be in snake_case", def.Name)
		}

		if seen[def.Name] {
			return fmt.Errorf("entity %s is defined more than once", def.Name)
		}
		seen[def.Name] = true

		if len(def.Fields) == 0 {
			return fmt.Errorf("entity %s has no fields", def.Name)
		}

		for _, fieldName := range def.FieldNames() {
			spec := def.Fields[fieldName]

			switch fieldName {
			case crud.FieldID, crud.FieldCreatedAt, crud.FieldUpdatedAt:
				return fmt.Errorf("entity %s declares reserved field %s", def.Name, fieldName)
			}

			if !knownFieldTypes[spec.Type] {
				return fmt.Errorf("field %s.%s has unknown type %s", def.Name, fieldName, spec.Type)
			}

			if len(spec.Enum) > 0 && spec.Type != FieldTypeString {
				return fmt.Errorf("field %s.%s declares an enum but is not a string", def.Name, fieldName)
			}

			if spec.MaxLength > 0 && spec.Type != FieldTypeString && spec.Type != FieldTypeText {
				return fmt.Errorf("field %s.%s declares max_length but is not a string or text", def.Name, fieldName)
			}
		}
	}

	for _, def := range cfg.Entities {
		for _, fieldName := range def.FieldNames() {
			spec := def.Fields[fieldName]
			if spec.References == "" {
				continue
			}

			if !seen[spec.References] {
				return fmt.Errorf("field %s.%s references unknown entity %s", def.Name, fieldName, spec.References)
			}

			if spec.Type != FieldTypeUUID && spec.Type != FieldTypeString {
				return fmt.Errorf("field %s.%s references an entity but is not a uuid or string", def.Name, fieldName)
			}
		}
	}

	return nil
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}
