package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrDeclined is returned by Run when the user declines to submit.
	ErrDeclined = errors.New("tui: submission declined")
	// ErrNoForm is returned when the session has no resume type selected.
	ErrNoForm = errors.New("tui: no form selected")
)
