package template

import (
	"io"
)

// TemplateRenderer is the engine contract the HTML renderer depends on.
// RenderTemplate returns the rendered output and also writes it to each
// supplied writer.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
