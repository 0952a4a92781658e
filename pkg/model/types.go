package model

import "strings"

// Kind is the closed set of input kinds a Field can describe.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindPhone    Kind = "tel"
	KindURL      Kind = "url"
	KindDate     Kind = "date"
	KindNumber   Kind = "number"
	KindTextArea Kind = "textarea"
	KindSelect   Kind = "select"
	KindFile     Kind = "file"
	KindArray    Kind = "array"
)

var knownKinds = map[Kind]struct{}{
	KindText:     {},
	KindEmail:    {},
	KindPhone:    {},
	KindURL:      {},
	KindDate:     {},
	KindNumber:   {},
	KindTextArea: {},
	KindSelect:   {},
	KindFile:     {},
	KindArray:    {},
}

// Known reports whether k is one of the declared kinds.
func (k Kind) Known() bool {
	_, ok := knownKinds[k]
	return ok
}

// TextLike reports whether the kind renders as a single-line input.
func (k Kind) TextLike() bool {
	switch k {
	case KindText, KindEmail, KindPhone, KindURL, KindDate, KindNumber:
		return true
	default:
		return false
	}
}

const (
	ValidationRuleEmail     = "email"
	ValidationRulePhone     = "phone"
	ValidationRuleURL       = "url"
	ValidationRulePattern   = "pattern"
	ValidationRuleRange     = "range"
	ValidationRuleYear      = "year"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
)

var knownRules = map[string]struct{}{
	ValidationRuleEmail:     {},
	ValidationRulePhone:     {},
	ValidationRuleURL:       {},
	ValidationRulePattern:   {},
	ValidationRuleRange:     {},
	ValidationRuleYear:      {},
	ValidationRuleMinLength: {},
	ValidationRuleMaxLength: {},
}

// ValidationRule names a rule applied to non-empty values. Thresholds and
// expressions live in Params as strings ("min", "max", "value", "pattern");
// Params["message"] replaces the rule's default message.
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Option is one entry of a select field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes one input. Array fields carry a Template describing a single
// repeatable item; each template entry uses its ID as the sub-field key.
type Field struct {
	ID          string          `json:"id"`
	Label       string          `json:"label,omitempty"`
	Kind        Kind            `json:"kind"`
	Required    bool            `json:"required,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Description string          `json:"description,omitempty"`
	Validation  *ValidationRule `json:"validation,omitempty"`
	Rows        int             `json:"rows,omitempty"`
	Options     []Option        `json:"options,omitempty"`
	Template    []Field         `json:"template,omitempty"`
	MinItems    int             `json:"minItems,omitempty"`
	Accept      string          `json:"accept,omitempty"`
	MaxSize     int64           `json:"maxSize,omitempty"`
	// Delimiter marks free text that is submitted as a list of trimmed,
	// non-empty entries split on this separator.
	Delimiter string `json:"delimiter,omitempty"`
}

// TemplateField returns the template entry registered under key.
func (f Field) TemplateField(key string) (Field, bool) {
	for _, sub := range f.Template {
		if sub.ID == key {
			return sub, true
		}
	}
	return Field{}, false
}

// TemplateKeys lists the template sub-field keys in declaration order.
func (f Field) TemplateKeys() []string {
	if len(f.Template) == 0 {
		return nil
	}
	keys := make([]string, len(f.Template))
	for i, sub := range f.Template {
		keys[i] = sub.ID
	}
	return keys
}

// DisplayLabel falls back to the id when no label is declared.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.ID
}

// Form is the field tree for one resume type. It is read-only once loaded.
type Form struct {
	Type        string  `json:"type"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Field returns the top-level field declared with id.
func (f Form) Field(id string) (Field, bool) {
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// Lookup resolves a runtime path to the field that describes it, walking
// into array templates for every hop.
func (f Form) Lookup(path Path) (Field, bool) {
	field, ok := f.Field(path.Field)
	if !ok {
		return Field{}, false
	}
	for _, hop := range path.Hops {
		if field.Kind != KindArray {
			return Field{}, false
		}
		field, ok = field.TemplateField(hop.Key)
		if !ok {
			return Field{}, false
		}
	}
	return field, true
}
