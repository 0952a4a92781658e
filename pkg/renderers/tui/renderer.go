package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/render"
	"github.com/goliatone/go-resumeform/pkg/state"
	"github.com/goliatone/go-resumeform/pkg/submission"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

// Session is the form flow the renderer drives. *builder.Session satisfies
// it; widget events mutate the session and every prompt re-reads the widget
// tree so repeater changes are picked up.
type Session interface {
	Form() (model.Form, bool)
	Widgets() []render.Widget
	Errors() validation.ErrorMap
	FormErrors() []string
	Notice() string
	Submit(ctx context.Context) (*submission.Result, error)
}

// Renderer implements render.Renderer for terminal-driven sessions. Render
// prints a plain-text review of a page; Fill and Run prompt for values.
type Renderer struct {
	driver     PromptDriver
	theme      Theme
	logger     *slog.Logger
	maxRetries int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, two retries).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		logger:     slog.New(slog.DiscardHandler),
		maxRetries: 2,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.theme)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes a review of the page: every field with its current value
// and error, then form-level messages and the status line.
func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	if page.Form.Title != "" {
		b.WriteString(page.Form.Title)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("=", len(page.Form.Title)))
		b.WriteString("\n")
	}
	for _, w := range page.Widgets {
		writeWidget(&b, w, "")
	}
	for _, msg := range page.Options.FormErrors {
		if msg = strings.TrimSpace(msg); msg != "" {
			fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, msg)
		}
	}
	b.WriteString(page.Errors.Summary())
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// Fill prompts for every field of the session in form order, then revisits
// fields that are still invalid until the form is valid or the user stops.
func (r *Renderer) Fill(ctx context.Context, sess Session) error {
	if _, ok := sess.Form(); !ok {
		return ErrNoForm
	}
	for _, id := range widgetIDs(sess.Widgets()) {
		if err := r.promptID(ctx, sess, id); err != nil {
			return err
		}
	}
	return r.revisit(ctx, sess)
}

// Run fills the session, shows the review, asks for confirmation and
// submits. Failed submissions are reported and, after fixing any fields the
// service flagged, may be retried up to the configured limit.
func (r *Renderer) Run(ctx context.Context, sess Session) (*submission.Result, error) {
	if err := r.Fill(ctx, sess); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if err := r.review(ctx, sess); err != nil {
			return nil, err
		}
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Generate resume now?", Default: true})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDeclined
		}

		result, err := sess.Submit(ctx)
		if err == nil {
			_ = r.info(ctx, result.Message)
			return result, nil
		}
		r.logger.Warn("submission failed", "attempt", attempt+1, "error", err)
		_ = r.fail(ctx, sess.Notice())

		var failure *submission.Failure
		retryable := errors.Is(err, submission.ErrFormInvalid) || errors.As(err, &failure)
		if !retryable || attempt >= r.maxRetries {
			return nil, err
		}
		if err := r.revisit(ctx, sess); err != nil {
			return nil, err
		}
	}
}

func (r *Renderer) review(ctx context.Context, sess Session) error {
	form, _ := sess.Form()
	page := render.Page{
		Form:    form,
		Widgets: sess.Widgets(),
		Errors:  sess.Errors(),
		Options: render.RenderOptions{FormErrors: sess.FormErrors()},
	}
	out, err := r.Render(ctx, page)
	if err != nil {
		return err
	}
	return r.driver.Info(ctx, strings.TrimRight(string(out), "\n"))
}

const doneOption = "Done"

// revisit offers the invalid fields until none are left or the user picks
// Done. Errors on a repeater item field are fixed through that field.
func (r *Renderer) revisit(ctx context.Context, sess Session) error {
	for {
		errs := sess.Errors()
		if errs.Valid() {
			return nil
		}
		ids := errs.Keys()
		options := make([]string, 0, len(ids)+1)
		for _, id := range ids {
			options = append(options, fmt.Sprintf("%s: %s", id, errs[id]))
		}
		options = append(options, doneOption)

		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: errs.Summary(),
			Options: options,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(ids) {
			return nil
		}
		if err := r.promptID(ctx, sess, ids[idx]); err != nil {
			return err
		}
	}
}

// promptID re-resolves id against the current widget tree before prompting.
func (r *Renderer) promptID(ctx context.Context, sess Session, id string) error {
	w := findWidget(sess.Widgets(), id)
	if w == nil {
		return nil
	}
	switch v := w.(type) {
	case *render.TextInput:
		return r.promptUntilValid(ctx, sess, id, func() error {
			current := findWidget(sess.Widgets(), id).(*render.TextInput)
			resp, err := r.driver.Input(ctx, InputConfig{
				Message: current.Label(),
				Default: current.Value,
				Help:    fieldHelp(current.Field(), current.Placeholder),
				Check:   fieldCheck(current.Field()),
			})
			if err != nil {
				return err
			}
			return current.Change(resp)
		})
	case *render.TextArea:
		return r.promptUntilValid(ctx, sess, id, func() error {
			current := findWidget(sess.Widgets(), id).(*render.TextArea)
			resp, err := r.driver.TextArea(ctx, TextAreaConfig{
				Message: current.Label(),
				Default: current.Value,
				Help:    fieldHelp(current.Field(), current.Placeholder),
				Check:   fieldCheck(current.Field()),
			})
			if err != nil {
				return err
			}
			return current.Change(resp)
		})
	case *render.Select:
		return r.promptSelect(ctx, v)
	case *render.FileUpload:
		return r.promptFile(ctx, sess, id)
	case *render.Repeater:
		return r.promptRepeater(ctx, sess, id)
	default:
		return fmt.Errorf("tui: unsupported widget %T for %q", w, id)
	}
}

// promptUntilValid repeats ask while the field reports an error. Optional
// empty fields never carry one, so they can be skipped with a blank answer.
func (r *Renderer) promptUntilValid(ctx context.Context, sess Session, id string, ask func() error) error {
	for {
		if err := ask(); err != nil {
			return err
		}
		msg := sess.Errors()[id]
		if msg == "" {
			return nil
		}
		if err := r.fail(ctx, msg); err != nil {
			return err
		}
	}
}

// fieldCheck validates a single answer with the field's own rules. The
// field carries its runtime id, so item fields report under that id.
func fieldCheck(field model.Field) Check {
	return func(answer string) string {
		return validation.Validate(state.Values{field.ID: answer}, []model.Field{field})[field.ID]
	}
}

func fieldHelp(field model.Field, placeholder string) string {
	switch {
	case field.Description != "":
		return field.Description
	case placeholder != "":
		return "e.g. " + placeholder
	}
	return ""
}

func (r *Renderer) promptSelect(ctx context.Context, w *render.Select) error {
	options := make([]string, len(w.Options))
	current := -1
	for i, opt := range w.Options {
		options[i] = opt.Label
		if opt.Value == w.Value {
			current = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      w.Label(),
		Options:      options,
		DefaultIndex: current,
		Help:         w.Field().Description,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(w.Options) {
		return nil
	}
	return w.Change(w.Options[idx].Value)
}

// promptFile reads a local path. A blank answer keeps the current file and
// "-" removes it. Rejected or unreadable files are reported and asked again.
func (r *Renderer) promptFile(ctx context.Context, sess Session, id string) error {
	for {
		w := findWidget(sess.Widgets(), id).(*render.FileUpload)
		help := w.Hint
		if !w.Empty() {
			help = fmt.Sprintf("current: %s (%s); enter - to remove", w.File.Name, w.Size())
		}
		resp, err := r.driver.Input(ctx, InputConfig{
			Message: w.Label() + " (path)",
			Help:    help,
		})
		if err != nil {
			return err
		}

		resp = strings.TrimSpace(resp)
		switch resp {
		case "":
			return nil
		case "-":
			return w.Remove()
		}

		file, err := readFile(resp)
		if err != nil {
			if err := r.fail(ctx, err.Error()); err != nil {
				return err
			}
			continue
		}
		var rejection *render.Rejection
		if err := w.Pick(file); errors.As(err, &rejection) {
			if err := r.fail(ctx, rejection.Message); err != nil {
				return err
			}
			continue
		} else if err != nil {
			return err
		}
		return nil
	}
}

func readFile(path string) (*model.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return &model.File{
		Name:        filepath.Base(path),
		Size:        int64(len(data)),
		ContentType: mimetype.Detect(data).String(),
		Content:     data,
	}, nil
}

// promptRepeater walks the existing items, then offers add, remove and done
// until the user is finished.
func (r *Renderer) promptRepeater(ctx context.Context, sess Session, id string) error {
	w := findWidget(sess.Widgets(), id).(*render.Repeater)
	for _, item := range w.Items {
		if err := r.promptItem(ctx, sess, item); err != nil {
			return err
		}
	}

	for {
		w = findWidget(sess.Widgets(), id).(*render.Repeater)
		options := []string{w.AddLabel}
		var removable []render.RepeaterItem
		for _, item := range w.Items {
			if item.Removable {
				options = append(options, "Remove "+item.Title)
				removable = append(removable, item)
			}
		}
		options = append(options, doneOption)

		msg := w.Label()
		if w.Empty() {
			msg += " (" + w.EmptyMessage + ")"
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: msg, Options: options})
		if err != nil {
			return err
		}

		switch {
		case idx == 0:
			if err := w.Add(); err != nil {
				return err
			}
			w = findWidget(sess.Widgets(), id).(*render.Repeater)
			if err := r.promptItem(ctx, sess, w.Items[len(w.Items)-1]); err != nil {
				return err
			}
		case idx > 0 && idx <= len(removable):
			if err := removable[idx-1].Remove(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (r *Renderer) promptItem(ctx context.Context, sess Session, item render.RepeaterItem) error {
	if err := r.info(ctx, item.Title); err != nil {
		return err
	}
	for _, field := range item.Fields {
		if err := r.promptID(ctx, sess, field.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) fail(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}
