package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-resumeform/pkg/render"
	rendertemplate "github.com/goliatone/go-resumeform/pkg/render/template"
	gotemplate "github.com/goliatone/go-resumeform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-resumeform/pkg/resume"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	classes          ChromeClasses
	stylesheet       bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. The directory
// mirrors the bundle layout (templates/form.tmpl, templates/widgets/...) and
// only needs the files it overrides.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = path
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithChromeClasses appends caller classes to the chrome elements.
func WithChromeClasses(classes ChromeClasses) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// WithInlineStylesheet embeds the default stylesheet in a <style> element.
func WithInlineStylesheet(enabled bool) Option {
	return func(cfg *config) {
		cfg.stylesheet = enabled
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	fields     *fieldRenderer
	classes    map[string]string
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithBaseDir(cfg.templatesDir),
			gotemplate.WithFilters(map[string]pongo2.FilterFunction{
				"sanitize": sanitizeFilter,
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	classes := cfg.classes.view()
	r := &Renderer{
		templates: renderer,
		fields:    newFieldRenderer(renderer, classes),
		classes:   classes,
	}
	if cfg.stylesheet {
		r.stylesheet = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the full form page: header, widgets, hidden fields, the
// aggregate status and the submit action.
func (r *Renderer) Render(_ context.Context, page render.Page) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}

	fields := make([]string, 0, len(page.Widgets))
	for _, w := range page.Widgets {
		markup, err := r.fields.render(w)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		fields = append(fields, markup)
	}

	formErrors := make([]string, 0, len(page.Options.FormErrors))
	for _, msg := range page.Options.FormErrors {
		if msg = strings.TrimSpace(msg); msg != "" {
			formErrors = append(formErrors, msg)
		}
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"form": map[string]any{
			"type":        page.Form.Type,
			"title":       page.Form.Title,
			"description": page.Form.Description,
		},
		"classes":     r.classes,
		"action":      page.Options.Action,
		"hidden":      hiddenFields(page.Options.Hidden),
		"fields_html": strings.Join(fields, "\n"),
		"status":      page.Errors.Summary(),
		"form_errors": formErrors,
		"busy":        page.Options.Busy,
		"submit":      submitLabel(page.Options.Busy),
		"submit_name": ActionSubmit,
		"stylesheet":  r.stylesheet,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// RenderPreview draws a read-only view of a generated resume.
func (r *Renderer) RenderPreview(_ context.Context, doc resume.Document) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	result, err := r.templates.RenderTemplate("templates/preview.tmpl", map[string]any{
		"doc":        previewView(doc),
		"classes":    r.classes,
		"stylesheet": r.stylesheet,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render preview: %w", err)
	}
	return []byte(result), nil
}

func submitLabel(busy bool) string {
	if busy {
		return "Generating..."
	}
	return "Generate Resume"
}

func hiddenFields(hidden map[string]string) []map[string]any {
	names := make([]string, 0, len(hidden))
	for name := range hidden {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]any{"name": name, "value": hidden[name]})
	}
	return out
}

var policy = bluemonday.UGCPolicy()

// sanitizeFilter strips unsafe markup from service supplied text and marks
// the remainder safe for output.
func sanitizeFilter(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(policy.Sanitize(in.String())), nil
}
