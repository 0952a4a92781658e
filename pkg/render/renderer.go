package render

import (
	"context"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

// Renderer turns a dispatched form into bytes (HTML, plain text, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page) ([]byte, error)
}

// Page is everything a renderer needs to draw one form session.
type Page struct {
	Form    model.Form
	Widgets []Widget
	Errors  validation.ErrorMap
	Options RenderOptions
}
