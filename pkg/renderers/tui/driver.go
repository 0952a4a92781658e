package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Check inspects an answer before it is accepted. It returns the message to
// show for an unacceptable answer and "" otherwise.
type Check func(answer string) string

// InputConfig describes a single-line prompt for a text-like field or a file
// path.
type InputConfig struct {
	Message string
	Default string
	Help    string
	Check   Check
}

// ConfirmConfig describes a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
}

// SelectConfig describes a single-choice prompt: select options, repeater
// menus and the list of fields left to fix.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
}

// TextAreaConfig describes a multi-line prompt. Answers end with an empty
// line.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
	Check   Check
}

// PromptDriver asks the questions of a form session. The renderer drives it
// and never touches the terminal itself, so sessions can be scripted in
// tests.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

// surveyDriver prompts on the process terminal. A Check becomes a survey
// validator so bad answers are re-asked in place with the field's message.
type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

func newSurveyDriver(theme Theme) PromptDriver {
	opts := []survey.AskOpt{survey.WithShowCursor(true)}
	if theme.ErrorPrefix != "" {
		opts = append(opts, survey.WithIcons(func(icons *survey.IconSet) {
			icons.Error.Text = theme.ErrorPrefix
		}))
	}
	return &surveyDriver{out: os.Stdout, opts: opts}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	prompt := &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}
	return out, d.ask(ctx, prompt, &out, cfg.Check)
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var out string
	prompt := &survey.Multiline{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}
	return out, d.ask(ctx, prompt, &out, cfg.Check)
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var out bool
	prompt := &survey.Confirm{Message: cfg.Message, Default: cfg.Default}
	return out, d.ask(ctx, prompt, &out, nil)
}

// Select answers with the chosen index, or -1 when the answer matches no
// option.
func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if len(cfg.Options) == 0 {
		return -1, nil
	}
	var out int
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	if err := d.ask(ctx, prompt, &out, nil); err != nil {
		return -1, err
	}
	return out, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, out any, check Check) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := d.opts
	if check != nil {
		opts = append(append([]survey.AskOpt(nil), d.opts...), survey.WithValidator(surveyValidator(check)))
	}
	err := survey.AskOne(prompt, out, opts...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, terminal.InterruptErr), errors.Is(err, io.EOF):
		return ErrAborted
	default:
		return err
	}
}

func surveyValidator(check Check) survey.Validator {
	return func(ans any) error {
		answer, _ := ans.(string)
		if msg := check(answer); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}
