package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-resumeform/pkg/model"
)

// PayloadSchema derives the OpenAPI schema of the generation request body
// produced for form. Dotted field ids become nested objects, delimiter
// fields become string lists and array fields become lists of item objects.
// Plain scalars pass through unchanged, so they accept strings and numbers.
func PayloadSchema(form model.Form) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	root.Title = form.Title
	root.Description = form.Description

	for _, field := range form.Fields {
		segments := strings.Split(field.ID, ".")
		parent := root
		for _, segment := range segments[:len(segments)-1] {
			parent = childObject(parent, segment)
		}
		leaf := segments[len(segments)-1]
		parent.WithProperty(leaf, fieldSchema(field))
		if field.Required {
			markRequired(parent, leaf)
		}
	}
	return root
}

// CheckPayload validates payload against the form's request contract. The
// payload is normalized through JSON first so typed values (lists, file
// handles) are checked in their wire shape.
func CheckPayload(form model.Form, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("catalog: encode payload: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("catalog: decode payload: %w", err)
	}
	if err := PayloadSchema(form).VisitJSON(generic); err != nil {
		return fmt.Errorf("catalog: payload for %s violates contract: %w", form.Type, err)
	}
	return nil
}

func fieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch {
	case field.Kind == model.KindArray:
		item := openapi3.NewObjectSchema()
		for _, sub := range field.Template {
			item.WithProperty(sub.ID, fieldSchema(sub))
		}
		schema = openapi3.NewArraySchema().WithItems(item)
		if field.MinItems > 0 {
			schema.WithMinItems(int64(field.MinItems))
		}
	case field.Kind == model.KindFile:
		schema = openapi3.NewObjectSchema().
			WithProperty("name", openapi3.NewStringSchema()).
			WithProperty("size", openapi3.NewInt64Schema()).
			WithNullable()
	case field.Delimiter != "":
		schema = openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
	case field.Kind == model.KindSelect:
		schema = openapi3.NewStringSchema()
		values := make([]any, 0, len(field.Options)+1)
		for _, opt := range field.Options {
			values = append(values, opt.Value)
		}
		if !field.Required {
			values = append(values, "")
		}
		schema.WithEnum(values...)
	case numeric(field):
		schema = openapi3.NewOneOfSchema(openapi3.NewFloat64Schema(), openapi3.NewStringSchema())
	default:
		schema = openapi3.NewOneOfSchema(openapi3.NewStringSchema(), openapi3.NewFloat64Schema())
	}
	schema.Title = field.Label
	schema.Description = field.Description
	return schema
}

// numeric reports whether field is expected to carry numbers. Those list the
// number branch first so the derived contract documents them as numeric.
func numeric(field model.Field) bool {
	if field.Kind == model.KindNumber {
		return true
	}
	if field.Validation == nil {
		return false
	}
	switch field.Validation.Kind {
	case model.ValidationRuleRange, model.ValidationRuleYear:
		return true
	}
	return false
}

func childObject(parent *openapi3.Schema, name string) *openapi3.Schema {
	if ref, ok := parent.Properties[name]; ok && ref != nil && ref.Value != nil {
		return ref.Value
	}
	child := openapi3.NewObjectSchema()
	parent.WithProperty(name, child)
	return child
}

func markRequired(schema *openapi3.Schema, name string) {
	if slices.Contains(schema.Required, name) {
		return
	}
	schema.Required = append(schema.Required, name)
}
