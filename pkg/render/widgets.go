package render

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

// Widget is the closed set of editable units the dispatcher produces:
// *TextInput, *TextArea, *Select, *FileUpload and *Repeater.
type Widget interface {
	// ID is the runtime id of the value the widget edits.
	ID() string
	// Field is the derived schema node, with ID set to the runtime id.
	Field() model.Field
	// ErrorText is the message from the error map, if any.
	ErrorText() string
	// Label is the display label, suffixed with " *" when required.
	Label() string

	widget()
}

type base struct {
	field model.Field
	path  model.Path
	err   string
	m     Mutator
}

func (b base) ID() string         { return b.path.String() }
func (b base) Field() model.Field { return b.field }
func (b base) ErrorText() string  { return b.err }
func (b base) Path() model.Path   { return b.path }

func (b base) Label() string {
	label := b.field.DisplayLabel()
	if b.field.Required {
		return label + " *"
	}
	return label
}

func (base) widget() {}

// set routes a scalar change through the mutator: top-level paths replace the
// value, item paths update one sub-field of one item.
func (b base) set(value any) error {
	if b.m == nil {
		return ErrNoMutator
	}
	if parent, hop, ok := b.path.Parent(); ok {
		return b.m.SetArrayItemField(parent, hop.Index, hop.Key, value)
	}
	return b.m.SetScalar(b.path, value)
}

// ErrNoMutator is returned by widget events dispatched without a Mutator.
var ErrNoMutator = errors.New("render: widget has no mutator")

// TextInput is a single-line input for text, email, tel, url, date and number
// kinds. InputType mirrors the field kind.
type TextInput struct {
	base
	InputType   string
	Value       string
	Placeholder string
}

// Change replaces the value.
func (w *TextInput) Change(value string) error { return w.set(value) }

// TextArea is a multi-line text input.
type TextArea struct {
	base
	Rows        int
	Value       string
	Placeholder string
}

// Change replaces the value.
func (w *TextArea) Change(value string) error { return w.set(value) }

// Select is a single choice among the field's options.
type Select struct {
	base
	Options     []model.Option
	Value       string
	Placeholder string
}

// Change replaces the selected value.
func (w *Select) Change(value string) error { return w.set(value) }

// Selected returns the option matching Value.
func (w *Select) Selected() (model.Option, bool) {
	for _, opt := range w.Options {
		if opt.Value == w.Value {
			return opt, true
		}
	}
	return model.Option{}, false
}

// FileUpload shows an upload affordance while File is nil and the file info
// plus a remove affordance once a file is stored.
type FileUpload struct {
	base
	File   *model.File
	Accept string
	Hint   string
}

// Empty reports whether the upload affordance should be shown.
func (w *FileUpload) Empty() bool { return w.File == nil }

// Size renders the stored file size, or "" when empty.
func (w *FileUpload) Size() string {
	if w.File == nil {
		return ""
	}
	return validation.FormatSize(w.File.Size)
}

// Pick stores file as the field value. A file that violates accept or
// maxSize is refused with a *Rejection and the value is left untouched.
func (w *FileUpload) Pick(file *model.File) error {
	if file == nil {
		return w.Remove()
	}
	if msg, ok := validation.CheckFile(w.field, file); !ok {
		return &Rejection{FieldID: w.ID(), File: file.Name, Message: msg}
	}
	return w.set(file)
}

// Remove clears the stored file.
func (w *FileUpload) Remove() error { return w.set(nil) }

// Rejection is the non-fatal, user-visible refusal of a picked file.
type Rejection struct {
	FieldID string
	File    string
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("render: %s rejected for %s: %s", r.File, r.FieldID, r.Message)
}

// Repeater edits an array field. Add is always available; items are
// removable only while the count exceeds MinItems.
type Repeater struct {
	base
	Items        []RepeaterItem
	MinItems     int
	AddLabel     string
	EmptyMessage string
}

// Add appends an empty item.
func (w *Repeater) Add() error {
	if w.m == nil {
		return ErrNoMutator
	}
	return w.m.AddArrayItem(w.path)
}

// Empty reports whether the empty-state message should be shown.
func (w *Repeater) Empty() bool { return len(w.Items) == 0 }

// RepeaterItem is one item of a Repeater with its sub-field widgets in
// template order.
type RepeaterItem struct {
	Index     int
	Title     string
	Removable bool
	Fields    []Widget

	path model.Path
	m    Mutator
}

// Remove deletes the item. It refuses when the item is not Removable.
func (it RepeaterItem) Remove() error {
	if !it.Removable {
		return ErrNotRemovable
	}
	if it.m == nil {
		return ErrNoMutator
	}
	return it.m.RemoveArrayItem(it.path, it.Index)
}

// ErrNotRemovable is returned when removing an item at the minItems floor.
var ErrNotRemovable = errors.New("render: item is not removable")
