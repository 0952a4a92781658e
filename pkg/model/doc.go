// Package model defines the declarative field schema consumed by the form
// engine. A Form is a list of Field nodes supplied once per resume type.
// Scalar kinds (text, email, tel, url, date, number, textarea, select, file)
// describe a single value; array fields describe a repeatable group through a
// Template whose entries are keyed by their ID. Templates may contain further
// array entries, so the tree has no fixed depth.
//
// Values inside repeatable groups are addressed by Path, the runtime id made
// of the declared field id plus one (index, key) hop per level of nesting.
// Path.String renders the id used as ErrorMap key ({arrayId}.{index}.{subKey})
// and Form.ResolvePath parses it back.
//
// ValidateForm enforces the structural invariants (array requires template,
// unique ids, known kinds and rules) and returns a *ConfigError wrapping
// ErrInvalidSchema on the first violation.
package model
