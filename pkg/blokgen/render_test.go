package blokgen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/velosovictor/frontblok-crud/pkg/schema"
)

func TestRenderEmitsEntityAndFieldConstants(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	err := Render(&buf, testConfig(), DefaultConfig())
	is.NoErr(err)

	out := buf.String()

	is.True(strings.HasPrefix(out, "// Code generated by blokgen. DO NOT EDIT."))
	is.True(strings.Contains(out, `TaskEntityName string = "task"`))
	is.True(strings.Contains(out, `ProjectEntityName string = "project"`))
	is.True(strings.Contains(out, "TaskFieldTitle"))
	is.True(strings.Contains(out, "ProjectFieldTitle"))
}

func TestRenderEmitsEnumConstants(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	err := Render(&buf, testConfig(), DefaultConfig())
	is.NoErr(err)

	out := buf.String()

	is.True(strings.Contains(out, "TaskStatusTodo"))
	is.True(strings.Contains(out, "TaskStatusDoing"))
	is.True(strings.Contains(out, "TaskStatusDone"))
	is.True(strings.Contains(out, `"doing"`))
}

func TestRenderEmitsTypedPayloadDecorators(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	err := Render(&buf, testConfig(), DefaultConfig())
	is.NoErr(err)

	out := buf.String()

	is.True(strings.Contains(out, "func NewTaskPayload(decorators ...crud.PayloadDecoratorFunc) crud.Payload {"))
	is.True(strings.Contains(out, "func TaskTitle(value string) crud.PayloadDecoratorFunc {"))
	is.True(strings.Contains(out, "func TaskDone(value bool) crud.PayloadDecoratorFunc {"))
	is.True(strings.Contains(out, "func TaskPoints(value int64) crud.PayloadDecoratorFunc {"))
}

func TestRenderUsesTheConfiguredModulePath(t *testing.T) {
	is := is.New(t)

	var buf bytes.Buffer
	err := Render(&buf, testConfig(), RenderConfig{PackageName: "models", ModulePath: "example.com/other"})
	is.NoErr(err)

	out := buf.String()

	is.True(strings.Contains(out, "package models"))
	is.True(strings.Contains(out, `"example.com/other/pkg/crud"`))
}

func TestRenderRejectsInvalidSchemas(t *testing.T) {
	is := is.New(t)
	cfg := &schema.Config{Entities: []schema.Definition{
		{Name: "task", Fields: map[string]schema.FieldSpec{"title": {Type: "varchar"}}},
	}}

	var buf bytes.Buffer
	err := Render(&buf, cfg, DefaultConfig())

	is.True(err != nil)
	is.Equal(buf.Len(), 0) // nothing is written for a broken schema
}

func TestBuildEnumCtx(t *testing.T) {
	is := is.New(t)
	spec := schema.FieldSpec{Type: schema.FieldTypeString, Enum: []string{"todo", "doing"}}

	ctx := buildEnumCtx("task", "status", spec)

	is.Equal(ctx.Prefix, "TaskStatus")
	is.Equal(ctx.Values[0].GoName, "TaskStatusTodo")
	is.Equal(ctx.Values[0].Value, "todo")
	is.Equal(ctx.Values[1].GoName, "TaskStatusDoing")
}

func testConfig() *schema.Config {
	return &schema.Config{Entities: []schema.Definition{
		{Name: "project", Fields: map[string]schema.FieldSpec{
			"title": {Type: schema.FieldTypeString, Required: true},
		}},
		{Name: "task", Fields: map[string]schema.FieldSpec{
			"title":  {Type: schema.FieldTypeString, Required: true},
			"status": {Type: schema.FieldTypeString, Enum: []string{"todo", "doing", "done"}},
			"done":   {Type: schema.FieldTypeBoolean},
			"points": {Type: schema.FieldTypeInteger},
		}},
	}}
}
