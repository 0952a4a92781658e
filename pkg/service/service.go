// Package service defines the boundary to the remote resume generation and
// storage service. Implementations live under internal/service.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-resumeform/pkg/resume"
)

// Service is the set of remote operations the engine consumes. Every call
// returns the decoded envelope; transport failures and non-2xx responses
// are reported as errors, typically *StatusError.
type Service interface {
	ListResumes(ctx context.Context) (Envelope[[]resume.Document], error)
	GetResume(ctx context.Context, id string) (Envelope[map[string]any], error)
	Generate(ctx context.Context, req Request) (Envelope[map[string]any], error)
	Edit(ctx context.Context, id string, req Request) (Envelope[map[string]any], error)
	Delete(ctx context.Context, id string) (Envelope[struct{}], error)
	Download(ctx context.Context, artifactURL string, dst io.Writer) (int64, error)
}

// Request is one generation or edit submission.
type Request struct {
	// ID correlates the submission across logs; sent as X-Request-ID.
	ID string
	// Payload is the processed form state. Values of type *model.File are
	// sent as multipart parts.
	Payload map[string]any
}

// Envelope is the {success, data, message, error} shape every response uses.
// Errors optionally carries field-level messages keyed by path.
type Envelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// ErrNotFound is wrapped by StatusError for 404 responses.
var ErrNotFound = errors.New("service: not found")

// StatusError is a non-2xx response. Message and Err carry the envelope's
// message and error fields when the body could be decoded.
type StatusError struct {
	StatusCode int
	Message    string
	Err        string
	Errors     map[string][]string
}

func (e *StatusError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "service: status %d", e.StatusCode)
	if text := http.StatusText(e.StatusCode); text != "" {
		b.WriteString(" ")
		b.WriteString(text)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != "" {
		b.WriteString(" - ")
		b.WriteString(e.Err)
	}
	return b.String()
}

// Is matches ErrNotFound for 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// RateLimited reports whether the response signals a rate limit.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
