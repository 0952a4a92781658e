package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSchema is the sentinel wrapped by every ConfigError.
var ErrInvalidSchema = errors.New("model: invalid schema")

// ConfigError reports a malformed field declaration. It is fatal at load time.
type ConfigError struct {
	Form    string
	FieldID string
	Reason  string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("model: invalid schema")
	if e.Form != "" {
		b.WriteString(" for form ")
		b.WriteString(fmt.Sprintf("%q", e.Form))
	}
	if e.FieldID != "" {
		b.WriteString(fmt.Sprintf(": field %q", e.FieldID))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidSchema
}

// ValidateForm checks the structural invariants of a form once, before it is
// handed to a session.
func ValidateForm(form Form) error {
	if strings.TrimSpace(form.Type) == "" {
		return &ConfigError{Reason: "form type is required"}
	}
	if len(form.Fields) == 0 {
		return &ConfigError{Form: form.Type, Reason: "form declares no fields"}
	}

	seen := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		id := strings.TrimSpace(field.ID)
		if id == "" {
			return &ConfigError{Form: form.Type, Reason: "field id is required"}
		}
		if _, dup := seen[id]; dup {
			return &ConfigError{Form: form.Type, FieldID: id, Reason: "duplicate field id"}
		}
		seen[id] = struct{}{}

		if err := validateField(field, id); err != nil {
			err.Form = form.Type
			return err
		}
	}
	return nil
}

func validateField(field Field, path string) *ConfigError {
	if !field.Kind.Known() {
		return &ConfigError{FieldID: path, Reason: fmt.Sprintf("unknown kind %q", field.Kind)}
	}

	if field.Kind == KindArray {
		if len(field.Template) == 0 {
			return &ConfigError{FieldID: path, Reason: "array field requires a template"}
		}
		if field.MinItems < 0 {
			return &ConfigError{FieldID: path, Reason: "minItems must not be negative"}
		}
		keys := make(map[string]struct{}, len(field.Template))
		for _, sub := range field.Template {
			key := strings.TrimSpace(sub.ID)
			if key == "" {
				return &ConfigError{FieldID: path, Reason: "template key is required"}
			}
			if _, dup := keys[key]; dup {
				return &ConfigError{FieldID: path, Reason: fmt.Sprintf("duplicate template key %q", key)}
			}
			keys[key] = struct{}{}
			if err := validateField(sub, path+"."+key); err != nil {
				return err
			}
		}
	} else if len(field.Template) > 0 {
		return &ConfigError{FieldID: path, Reason: fmt.Sprintf("%s field must not declare a template", field.Kind)}
	}

	if field.Kind == KindSelect && len(field.Options) == 0 {
		return &ConfigError{FieldID: path, Reason: "select field requires options"}
	}
	if field.MaxSize < 0 {
		return &ConfigError{FieldID: path, Reason: "maxSize must not be negative"}
	}

	if rule := field.Validation; rule != nil {
		if _, ok := knownRules[rule.Kind]; !ok {
			return &ConfigError{FieldID: path, Reason: fmt.Sprintf("unknown validation rule %q", rule.Kind)}
		}
		if rule.Kind == ValidationRulePattern {
			expr := rule.Params["pattern"]
			if expr == "" {
				return &ConfigError{FieldID: path, Reason: "pattern rule requires params.pattern"}
			}
			if _, err := regexp.Compile(expr); err != nil {
				return &ConfigError{FieldID: path, Reason: fmt.Sprintf("pattern does not compile: %v", err)}
			}
		}
	}
	return nil
}
