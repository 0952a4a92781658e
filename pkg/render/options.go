package render

// RenderOptions describe per-request data that renderers can use without
// touching form state.
type RenderOptions struct {
	// Action is the submit target of the rendered form.
	Action string
	// Hidden fields are emitted alongside the visible inputs, sorted by name.
	Hidden map[string]string
	// FormErrors are messages not attributable to a single field, such as
	// the aggregate warning or a submission failure.
	FormErrors []string
	// Busy disables the submit action while a submission is outstanding.
	Busy bool
}
