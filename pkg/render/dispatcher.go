package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/state"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

// Mutator is the set of state operations a widget may invoke. *state.Store
// implements it; sessions wrap it to revalidate after every change.
type Mutator interface {
	SetScalar(path model.Path, value any) error
	AddArrayItem(path model.Path) error
	RemoveArrayItem(path model.Path, index int) error
	SetArrayItemField(path model.Path, index int, key string, value any) error
}

// DispatchForm builds the widgets for every top-level field of form.
func DispatchForm(form model.Form, values state.Values, errs validation.ErrorMap, m Mutator) []Widget {
	widgets := make([]Widget, 0, len(form.Fields))
	for _, field := range form.Fields {
		widgets = append(widgets, Dispatch(field, model.FieldPath(field.ID), values[field.ID], errs, m))
	}
	return widgets
}

// Dispatch selects the widget for field from its kind and wires its events to
// m. Array fields recurse into their items: every template entry becomes a
// derived field whose ID is the runtime id {arrayId}.{index}.{subKey}. The
// function keeps no state between calls.
func Dispatch(field model.Field, path model.Path, value any, errs validation.ErrorMap, m Mutator) Widget {
	derived := field
	derived.ID = path.String()
	b := base{field: derived, path: path, err: errs[derived.ID], m: m}

	switch field.Kind {
	case model.KindArray:
		return repeater(b, field, value, errs, m)
	case model.KindTextArea:
		rows := field.Rows
		if rows <= 0 {
			rows = 3
		}
		return &TextArea{base: b, Rows: rows, Value: text(value), Placeholder: field.Placeholder}
	case model.KindSelect:
		return &Select{base: b, Options: field.Options, Value: text(value), Placeholder: selectPlaceholder(field)}
	case model.KindFile:
		file, _ := value.(*model.File)
		return &FileUpload{base: b, File: file, Accept: field.Accept, Hint: fileHint(field)}
	default:
		return &TextInput{base: b, InputType: string(field.Kind), Value: text(value), Placeholder: field.Placeholder}
	}
}

func repeater(b base, field model.Field, value any, errs validation.ErrorMap, m Mutator) *Repeater {
	items, _ := value.([]state.Item)
	label := field.DisplayLabel()
	w := &Repeater{
		base:         b,
		MinItems:     field.MinItems,
		AddLabel:     "Add " + label,
		EmptyMessage: fmt.Sprintf("No %s added yet", strings.ToLower(label)),
		Items:        make([]RepeaterItem, 0, len(items)),
	}
	removable := len(items) > field.MinItems

	for index, item := range items {
		entry := RepeaterItem{
			Index:     index,
			Title:     fmt.Sprintf("%s #%d", label, index+1),
			Removable: removable,
			Fields:    make([]Widget, 0, len(field.Template)),
			path:      b.path,
			m:         m,
		}
		for _, sub := range field.Template {
			entry.Fields = append(entry.Fields, Dispatch(sub, b.path.Item(index, sub.ID), item[sub.ID], errs, m))
		}
		w.Items = append(w.Items, entry)
	}
	return w
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func selectPlaceholder(field model.Field) string {
	if field.Placeholder != "" {
		return field.Placeholder
	}
	return "Select " + strings.ToLower(field.DisplayLabel())
}

// fileHint renders the accepted type and size limit, e.g. ".PDF up to 10MB".
func fileHint(field model.Field) string {
	accept := strings.ToUpper(strings.TrimSpace(field.Accept))
	switch {
	case accept != "" && field.MaxSize > 0:
		return fmt.Sprintf("%s up to %dMB", accept, validation.Megabytes(field.MaxSize))
	case accept != "":
		return accept
	case field.MaxSize > 0:
		return fmt.Sprintf("Up to %dMB", validation.Megabytes(field.MaxSize))
	default:
		return ""
	}
}
