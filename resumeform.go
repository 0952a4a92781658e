package resumeform

import (
	"context"
	"fmt"

	"github.com/goliatone/go-resumeform/internal/service/httpclient"
	"github.com/goliatone/go-resumeform/pkg/builder"
	"github.com/goliatone/go-resumeform/pkg/catalog"
	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/render"
	"github.com/goliatone/go-resumeform/pkg/renderers/vanilla"
	"github.com/goliatone/go-resumeform/pkg/resume"
	"github.com/goliatone/go-resumeform/pkg/service"
)

// Resume types shipped with the embedded catalog.
const (
	TypeFresher     = catalog.TypeFresher
	TypeExperienced = catalog.TypeExperienced
)

// Session aliases builder.Session so callers can stay on the root package.
type Session = builder.Session

// SessionOption aliases builder.Option.
type SessionOption = builder.Option

// RenderOptions describes per-request data for the HTML renderer.
type RenderOptions = render.RenderOptions

// ServiceOption configures the HTTP service client.
type ServiceOption = httpclient.Option

// Document is a generated or saved resume.
type Document = resume.Document

var (
	WithToken      = httpclient.WithToken
	WithTimeout    = httpclient.WithTimeout
	WithHTTPClient = httpclient.WithHTTPClient
)

// FieldPath returns the path of a declared field id such as
// "personalInfo.fullName". Runtime ids of item fields, such as
// "education.0.degree", are resolved against a form with Session.Path.
func FieldPath(id string) model.Path {
	return model.FieldPath(id)
}

// DefaultCatalog returns the embedded FRESHER and EXPERIENCED forms.
func DefaultCatalog() (*catalog.Catalog, error) {
	return catalog.Default()
}

// NewHTTPService builds the REST client for the resume service rooted at
// baseURL.
func NewHTTPService(baseURL string, options ...ServiceOption) (service.Service, error) {
	return httpclient.New(baseURL, options...)
}

// NewSession starts a form session against svc.
func NewSession(svc service.Service, options ...SessionOption) (*Session, error) {
	return builder.New(svc, options...)
}

// RenderHTML draws the session's current form with the built-in templates.
// The session status and any service messages are included.
func RenderHTML(ctx context.Context, sess *Session, opts RenderOptions, rendererOptions ...vanilla.Option) ([]byte, error) {
	form, ok := sess.Form()
	if !ok {
		return nil, builder.ErrNoForm
	}
	r, err := vanilla.New(rendererOptions...)
	if err != nil {
		return nil, err
	}

	opts.FormErrors = render.MergeFormErrors(opts.FormErrors, sess.FormErrors()...)
	if notice := sess.Notice(); notice != "" {
		opts.FormErrors = render.MergeFormErrors(opts.FormErrors, notice)
	}
	opts.Busy = opts.Busy || sess.Busy()

	out, err := r.Render(ctx, render.Page{
		Form:    form,
		Widgets: sess.Widgets(),
		Errors:  sess.Errors(),
		Options: opts,
	})
	if err != nil {
		return nil, fmt.Errorf("resumeform: render %s: %w", form.Type, err)
	}
	return out, nil
}

// RenderPreview draws a read-only HTML view of doc.
func RenderPreview(ctx context.Context, doc Document, rendererOptions ...vanilla.Option) ([]byte, error) {
	r, err := vanilla.New(rendererOptions...)
	if err != nil {
		return nil, err
	}
	return r.RenderPreview(ctx, doc)
}
