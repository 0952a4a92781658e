// Package state holds the in-progress values of one form session. The Store
// is the only writer: renderers and sessions mutate values through
// SetScalar, AddArrayItem, RemoveArrayItem and SetArrayItemField, each of
// which either applies fully or returns an error and leaves values as they
// were.
package state
