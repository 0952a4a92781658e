package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/state"
)

// ErrorMap maps rendered runtime ids to a user-facing message. A missing key
// means the value is valid.
type ErrorMap map[string]string

// Keys returns the ids carrying an error, sorted.
func (m ErrorMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Valid reports whether the map carries no errors.
func (m ErrorMap) Valid() bool {
	return len(m) == 0
}

// Scope reports whether any error is keyed at id or below it.
func (m ErrorMap) Scope(id string) bool {
	if _, ok := m[id]; ok {
		return true
	}
	prefix := id + "."
	for key := range m {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Summary renders the status line shown next to the submit action.
func (m ErrorMap) Summary() string {
	switch n := len(m); n {
	case 0:
		return "All required fields are completed"
	case 1:
		return "Please fix 1 error to continue"
	default:
		return fmt.Sprintf("Please fix %d errors to continue", n)
	}
}

// IsFormValid is the submittable predicate: the map has zero keys.
func IsFormValid(m ErrorMap) bool {
	return m.Valid()
}

// Validate derives the error map for values against fields. It recurses into
// array items using each field's template, keying item errors by
// {arrayId}.{index}.{subKey}. It performs no I/O and keeps no state, so equal
// inputs always produce equal maps.
func Validate(values state.Values, fields []model.Field) ErrorMap {
	errs := make(ErrorMap)
	for _, field := range fields {
		validateField(field, model.FieldPath(field.ID), values[field.ID], errs)
	}
	return errs
}

func validateField(field model.Field, path model.Path, value any, errs ErrorMap) {
	id := path.String()

	if field.Kind == model.KindArray {
		items, _ := value.([]state.Item)
		switch {
		case field.Required && len(items) == 0:
			errs[id] = requiredMessage(field)
		case len(items) < field.MinItems:
			errs[id] = fmt.Sprintf("%s requires at least %d %s", field.DisplayLabel(), field.MinItems, plural(field.MinItems, "item", "items"))
		}
		for index, item := range items {
			for _, sub := range field.Template {
				validateField(sub, path.Item(index, sub.ID), item[sub.ID], errs)
			}
		}
		return
	}

	if IsEmpty(value) {
		if field.Required {
			errs[id] = requiredMessage(field)
		}
		return
	}

	if field.Kind == model.KindFile {
		if file, ok := value.(*model.File); ok {
			if msg, ok := CheckFile(field, file); !ok {
				errs[id] = msg
			}
		}
		return
	}

	text := strings.TrimSpace(stringify(value))

	if field.Kind == model.KindSelect && !hasOption(field, text) {
		errs[id] = fmt.Sprintf("Please select a valid %s", strings.ToLower(field.DisplayLabel()))
		return
	}

	if field.Validation != nil {
		if msg, ok := applyRule(field, *field.Validation, text); !ok {
			errs[id] = msg
		}
	}
}

// IsEmpty reports whether value counts as missing for the required check.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *model.File:
		return v == nil
	case []state.Item:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func requiredMessage(field model.Field) string {
	return field.DisplayLabel() + " is required"
}

func hasOption(field model.Field, value string) bool {
	for _, opt := range field.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
