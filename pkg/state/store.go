package state

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-resumeform/pkg/model"
)

var (
	// ErrUnknownField is returned when a path does not resolve against the form.
	ErrUnknownField = errors.New("state: unknown field")
	// ErrNotArray is returned when an array operation targets a non-array field.
	ErrNotArray = errors.New("state: field is not an array")
	// ErrNotScalar is returned when SetScalar targets an array field.
	ErrNotScalar = errors.New("state: field is an array")
	// ErrIndexOutOfRange is returned when an item index does not exist.
	ErrIndexOutOfRange = errors.New("state: item index out of range")
	// ErrBelowMinItems is returned when a removal would drop below minItems.
	ErrBelowMinItems = errors.New("state: removal would drop below minItems")
)

// Item is one record of a repeatable field, keyed by template sub-key.
type Item map[string]any

// Values maps declared field ids to their current value. Array fields hold
// []Item; every other field holds a string, number, *model.File or nil.
type Values map[string]any

// Store is the single-writer owner of a form's values. Mutations only go
// through its operations; readers receive the current Values or a Snapshot.
type Store struct {
	form   model.Form
	values Values
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes misuse diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a store initialised for form.
func New(form model.Form, opts ...Option) *Store {
	s := &Store{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.Reset(form)
	return s
}

// Reset discards all values and re-initialises them for form: scalars to "",
// arrays to minItems empty items.
func (s *Store) Reset(form model.Form) {
	s.form = form
	s.values = make(Values, len(form.Fields))
	for _, field := range form.Fields {
		s.values[field.ID] = initialValue(field)
	}
}

// Form returns the form the store is initialised for.
func (s *Store) Form() model.Form {
	return s.form
}

// Values exposes the live values. Callers must treat them as read-only;
// array items are replaced, never edited in place, so holding a reference
// across mutations is safe.
func (s *Store) Values() Values {
	return s.values
}

// Value returns the current value at path.
func (s *Store) Value(path model.Path) (any, bool) {
	value, ok := s.values[path.Field]
	if !ok {
		return nil, false
	}
	for _, hop := range path.Hops {
		items, ok := value.([]Item)
		if !ok || hop.Index < 0 || hop.Index >= len(items) {
			return nil, false
		}
		value, ok = items[hop.Index][hop.Key]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

// Items returns the items of the array at path.
func (s *Store) Items(path model.Path) ([]Item, bool) {
	value, ok := s.Value(path)
	if !ok {
		return nil, false
	}
	items, ok := value.([]Item)
	return items, ok
}

// Snapshot returns a deep copy of the values.
func (s *Store) Snapshot() Values {
	out := make(Values, len(s.values))
	for id, value := range s.values {
		out[id] = cloneValue(value)
	}
	return out
}

// SetScalar replaces the value at path. Paths with hops update one sub-field
// of one item. Constraints are left to the validator.
func (s *Store) SetScalar(path model.Path, value any) error {
	field, err := s.lookup(path)
	if err != nil {
		return err
	}
	if field.Kind == model.KindArray {
		return s.misuse("set scalar", path, ErrNotScalar)
	}
	if parent, hop, ok := path.Parent(); ok {
		return s.SetArrayItemField(parent, hop.Index, hop.Key, value)
	}
	s.values[path.Field] = value
	return nil
}

// AddArrayItem appends an item with every template key set to its empty value.
func (s *Store) AddArrayItem(path model.Path) error {
	field, err := s.lookup(path)
	if err != nil {
		return err
	}
	if field.Kind != model.KindArray {
		return s.misuse("add item", path, ErrNotArray)
	}
	items, _ := s.Items(path)
	next := make([]Item, len(items), len(items)+1)
	copy(next, items)
	next = append(next, newItem(field))
	return s.replace(path, next)
}

// RemoveArrayItem removes the item at index. The store keeps the minItems
// floor: removing from an array already at its minimum is refused.
func (s *Store) RemoveArrayItem(path model.Path, index int) error {
	field, err := s.lookup(path)
	if err != nil {
		return err
	}
	if field.Kind != model.KindArray {
		return s.misuse("remove item", path, ErrNotArray)
	}
	items, _ := s.Items(path)
	if index < 0 || index >= len(items) {
		return s.misuse("remove item", path, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(items)))
	}
	if len(items) <= field.MinItems {
		return s.misuse("remove item", path, fmt.Errorf("%w (%d)", ErrBelowMinItems, field.MinItems))
	}
	next := make([]Item, 0, len(items)-1)
	next = append(next, items[:index]...)
	next = append(next, items[index+1:]...)
	return s.replace(path, next)
}

// SetArrayItemField replaces one sub-field of one item. Only the touched item
// is copied; every other item is shared with the previous sequence.
func (s *Store) SetArrayItemField(path model.Path, index int, key string, value any) error {
	field, err := s.lookup(path)
	if err != nil {
		return err
	}
	if field.Kind != model.KindArray {
		return s.misuse("set item field", path, ErrNotArray)
	}
	sub, ok := field.TemplateField(key)
	if !ok {
		return s.misuse("set item field", path.Item(index, key), ErrUnknownField)
	}
	if sub.Kind == model.KindArray {
		return s.misuse("set item field", path.Item(index, key), ErrNotScalar)
	}
	items, _ := s.Items(path)
	if index < 0 || index >= len(items) {
		return s.misuse("set item field", path, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(items)))
	}

	next := make([]Item, len(items))
	copy(next, items)
	next[index] = items[index].with(key, value)
	return s.replace(path, next)
}

// replace stores items at path, copying each enclosing item on the way up.
func (s *Store) replace(path model.Path, items []Item) error {
	parent, hop, ok := path.Parent()
	if !ok {
		s.values[path.Field] = items
		return nil
	}
	outer, ok := s.Items(parent)
	if !ok || hop.Index < 0 || hop.Index >= len(outer) {
		return s.misuse("update item", path, ErrIndexOutOfRange)
	}
	next := make([]Item, len(outer))
	copy(next, outer)
	next[hop.Index] = outer[hop.Index].with(hop.Key, items)
	return s.replace(parent, next)
}

func (s *Store) lookup(path model.Path) (model.Field, error) {
	field, ok := s.form.Lookup(path)
	if !ok {
		return model.Field{}, s.misuse("lookup", path, ErrUnknownField)
	}
	return field, nil
}

func (s *Store) misuse(op string, path model.Path, err error) error {
	s.logger.Warn("form state misuse", "op", op, "field", path.String(), "error", err)
	return fmt.Errorf("%s %s: %w", op, path.String(), err)
}

func (it Item) with(key string, value any) Item {
	out := make(Item, len(it)+1)
	for k, v := range it {
		out[k] = v
	}
	out[key] = value
	return out
}

func initialValue(field model.Field) any {
	if field.Kind != model.KindArray {
		return ""
	}
	items := make([]Item, 0, field.MinItems)
	for i := 0; i < field.MinItems; i++ {
		items = append(items, newItem(field))
	}
	return items
}

func newItem(field model.Field) Item {
	item := make(Item, len(field.Template))
	for _, sub := range field.Template {
		item[sub.ID] = initialValue(sub)
	}
	return item
}

func cloneValue(value any) any {
	items, ok := value.([]Item)
	if !ok {
		return value
	}
	out := make([]Item, len(items))
	for i, item := range items {
		copied := make(Item, len(item))
		for k, v := range item {
			copied[k] = cloneValue(v)
		}
		out[i] = copied
	}
	return out
}
