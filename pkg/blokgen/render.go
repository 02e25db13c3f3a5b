// Package blokgen provides code generation from entity schemas.
package blokgen

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"text/template"

	"github.com/velosovictor/frontblok-crud/pkg/inflect"
	"github.com/velosovictor/frontblok-crud/pkg/schema"
)

// RenderConfig specifies the settings for generating Go code from an entity
// schema.
type RenderConfig struct {
	// PackageName is the name of the Go package for the generated code.
	PackageName string
	// ModulePath is the module import path for the 'crud' package.
	ModulePath string
}

// DefaultConfig returns a standard RenderConfig with sensible defaults.
func DefaultConfig() RenderConfig {
	return RenderConfig{
		PackageName: "datamodels",
		ModulePath:  "github.com/velosovictor/frontblok-crud",
	}
}

// Render validates the schema and writes the generated Go source code to the
// provided writer. The output carries, for every entity, its name constant,
// field name constants, enum value constants and typed payload decorators.
func Render(w io.Writer, cfg *schema.Config, rcfg RenderConfig) error {
	if rcfg.PackageName == "" {
		rcfg.PackageName = "datamodels"
	}
	if rcfg.ModulePath == "" {
		rcfg.ModulePath = "github.com/velosovictor/frontblok-crud"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	data := &renderData{
		PackageName: rcfg.PackageName,
		ModulePath:  rcfg.ModulePath,
	}

	for _, def := range cfg.Entities {
		data.Entities = append(data.Entities, buildEntityCtx(def))
	}

	var buf bytes.Buffer
	if err := renderTemplate.Execute(&buf, data); err != nil {
		return err
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("generated code does not compile: %w", err)
	}

	_, err = w.Write(formatted)

	return err
}

type renderData struct {
	PackageName string
	ModulePath  string
	Entities    []entityCtx
}

type entityCtx struct {
	GoName     string
	EntityName string
	Fields     []fieldCtx
	Enums      []enumCtx
}

type fieldCtx struct {
	GoName    string
	FieldName string
	GoType    string
}

type enumCtx struct {
	Prefix    string // PascalCase entity plus field prefix
	FieldName string
	Values    []enumValueCtx
}

type enumValueCtx struct {
	GoName string // e.g. "TaskStatusTodo"
	Value  string // e.g. "todo"
}

func buildEntityCtx(def schema.Definition) entityCtx {
	ctx := entityCtx{
		GoName:     inflect.ToPascalCase(def.Name),
		EntityName: def.Name,
	}

	for _, fieldName := range def.FieldNames() {
		spec := def.Fields[fieldName]

		ctx.Fields = append(ctx.Fields, fieldCtx{
			GoName:    inflect.ToPascalCase(fieldName),
			FieldName: fieldName,
			GoType:    goFieldType(spec.Type),
		})

		if len(spec.Enum) > 0 {
			ctx.Enums = append(ctx.Enums, buildEnumCtx(def.Name, fieldName, spec))
		}
	}

	return ctx
}

func buildEnumCtx(entityName, fieldName string, spec schema.FieldSpec) enumCtx {
	prefix := inflect.ToPascalCase(entityName) + inflect.ToPascalCase(fieldName)
	ctx := enumCtx{
		Prefix:    prefix,
		FieldName: fieldName,
	}

	for _, v := range spec.Enum {
		ctx.Values = append(ctx.Values, enumValueCtx{
			GoName: prefix + inflect.ToPascalCase(v),
			Value:  v,
		})
	}

	return ctx
}

func goFieldType(fieldType string) string {
	switch fieldType {
	case schema.FieldTypeInteger:
		return "int64"
	case schema.FieldTypeDecimal:
		return "float64"
	case schema.FieldTypeBoolean:
		return "bool"
	case schema.FieldTypeJSON:
		return "any"
	default:
		// string, text, uuid, datetime and date all travel as strings
		return "string"
	}
}

var renderTemplate = template.Must(template.New("datamodels").Parse(`// Code generated by blokgen. DO NOT EDIT.

package {{.PackageName}}

import (
	"{{.ModulePath}}/pkg/crud"
)
{{range .Entities}}{{$e := .}}
const (
	//{{$e.GoName}}EntityName is the entity name constant for {{$e.GoName}}
	{{$e.GoName}}EntityName string = "{{$e.EntityName}}"
)

// Field name constants for {{$e.GoName}}.
const (
{{- range $e.Fields}}
	{{$e.GoName}}Field{{.GoName}} string = "{{.FieldName}}"
{{- end}}
)
{{- range $e.Enums}}

// {{.Prefix}} values for the "{{.FieldName}}" field.
const (
{{- range .Values}}
	{{.GoName}} string = "{{.Value}}"
{{- end}}
)
{{- end}}

//New{{$e.GoName}}Payload creates a payload for creating or updating a {{$e.GoName}}
func New{{$e.GoName}}Payload(decorators ...crud.PayloadDecoratorFunc) crud.Payload {
	return crud.NewPayload(decorators...)
}
{{range $e.Fields}}
//{{$e.GoName}}{{.GoName}} sets the {{.FieldName}} field on a {{$e.GoName}} payload
func {{$e.GoName}}{{.GoName}}(value {{.GoType}}) crud.PayloadDecoratorFunc {
	return crud.Field("{{.FieldName}}", value)
}
{{end}}{{end}}`))
