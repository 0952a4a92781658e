// Package validation derives the ErrorMap of a form from its current values.
package validation
