package submission

import (
	"strings"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/state"
)

// ResumeTypeKey carries the form's resume type in every payload unless the
// form declares a field with the same id.
const ResumeTypeKey = "resumeType"

// BuildPayload converts form state into the request body. Dotted field ids
// expand into nested objects ("personalInfo.email" becomes
// {"personalInfo": {"email": ...}}), delimiter fields are split into lists of
// trimmed non-empty entries, array items become objects that keep any extra
// keys loaded with them, and every other value passes through unchanged.
func BuildPayload(form model.Form, values state.Values) map[string]any {
	payload := make(map[string]any, len(form.Fields)+1)
	for _, field := range form.Fields {
		setDotted(payload, field.ID, exportValue(field, values[field.ID]))
	}
	if _, declared := form.Field(ResumeTypeKey); !declared && form.Type != "" {
		payload[ResumeTypeKey] = form.Type
	}
	return payload
}

// SplitList splits raw on delimiter, trims every entry and drops blanks. The
// result is never nil.
func SplitList(raw, delimiter string) []string {
	out := []string{}
	if delimiter == "" {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
		return out
	}
	for _, part := range strings.Split(raw, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func exportValue(field model.Field, value any) any {
	switch {
	case field.Kind == model.KindArray:
		return exportItems(field, value)
	case field.Delimiter != "":
		switch v := value.(type) {
		case string:
			return SplitList(v, field.Delimiter)
		case []string:
			return SplitList(strings.Join(v, field.Delimiter), field.Delimiter)
		case nil:
			return []string{}
		default:
			return value
		}
	case field.Kind == model.KindFile:
		if file, ok := value.(*model.File); ok && file != nil {
			return file
		}
		return nil
	default:
		return value
	}
}

func exportItems(field model.Field, value any) []map[string]any {
	items, _ := value.([]state.Item)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entry := make(map[string]any, len(item))
		for key, v := range item {
			entry[key] = v
		}
		for _, sub := range field.Template {
			entry[sub.ID] = exportValue(sub, item[sub.ID])
		}
		out = append(out, entry)
	}
	return out
}

func setDotted(dst map[string]any, id string, value any) {
	segments := strings.Split(id, ".")
	current := dst
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}
