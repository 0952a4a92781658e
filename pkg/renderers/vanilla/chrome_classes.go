package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "rf-form"
	ClassHeader   ChromeClass = "rf-header"
	ClassField    ChromeClass = "rf-field"
	ClassRepeater ChromeClass = "rf-repeater"
	ClassActions  ChromeClass = "rf-actions"
	ClassErrors   ChromeClass = "rf-errors"
	ClassPreview  ChromeClass = "rf-preview"
)

// ChromeClasses overrides the class applied to each chrome element. Empty
// entries fall back to the defaults.
type ChromeClasses struct {
	Form     string
	Header   string
	Field    string
	Repeater string
	Actions  string
	Errors   string
	Preview  string
}

func (c ChromeClasses) view() map[string]string {
	pick := func(override string, fallback ChromeClass) string {
		if cleaned := sanitizeClassList(override); cleaned != "" {
			return string(fallback) + " " + cleaned
		}
		return string(fallback)
	}
	return map[string]string{
		"form":     pick(c.Form, ClassForm),
		"header":   pick(c.Header, ClassHeader),
		"field":    pick(c.Field, ClassField),
		"repeater": pick(c.Repeater, ClassRepeater),
		"actions":  pick(c.Actions, ClassActions),
		"errors":   pick(c.Errors, ClassErrors),
		"preview":  pick(c.Preview, ClassPreview),
	}
}
