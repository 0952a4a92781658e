package submission

import (
	"errors"
	"strings"

	"github.com/goliatone/go-resumeform/pkg/service"
)

// Mode distinguishes a new generation from an edit of a saved document.
type Mode int

const (
	ModeGenerate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "generate"
}

// FailureKind classifies a failed submission.
type FailureKind int

const (
	// FailureService covers transport errors and non-2xx responses.
	FailureService FailureKind = iota
	// FailureRateLimited is a 429 response.
	FailureRateLimited
	// FailureRejected is a 2xx envelope with success=false.
	FailureRejected
	// FailureContract is a payload that does not satisfy the request schema;
	// nothing was sent.
	FailureContract
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureRejected:
		return "rejected"
	case FailureContract:
		return "contract"
	default:
		return "service"
	}
}

const (
	MessageRateLimited    = "Rate limit exceeded. Please wait a minute before trying again."
	MessageServiceFailure = "Failed to generate/update resume. Please try again."
	MessageGenerateFailed = "Failed to generate resume"
	MessageEditFailed     = "Failed to update resume"
	MessageContract       = "Some values are not in the format the resume service expects"
)

// Failure is a classified submission failure. Message is ready to show the
// user; Fields holds field-level messages keyed by the service's paths.
type Failure struct {
	Kind       FailureKind
	Mode       Mode
	StatusCode int
	Message    string
	Fields     map[string][]string
	Err        error
}

func (f *Failure) Error() string {
	return "submission: " + f.Mode.String() + " failed: " + f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// Classify converts a service call error into a Failure.
func Classify(mode Mode, err error) *Failure {
	failure := &Failure{Kind: FailureService, Mode: mode, Message: MessageServiceFailure, Err: err}

	var status *service.StatusError
	if !errors.As(err, &status) {
		return failure
	}
	failure.StatusCode = status.StatusCode
	failure.Fields = status.Errors

	if status.RateLimited() {
		failure.Kind = FailureRateLimited
		failure.Message = firstNonEmpty(status.Message, MessageRateLimited)
		return failure
	}
	parts := make([]string, 0, 2)
	for _, part := range []string{status.Message, status.Err} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) > 0 {
		failure.Message = strings.Join(parts, " - ")
	}
	return failure
}

// Rejected builds the failure for an envelope that reports success=false.
func Rejected[T any](mode Mode, env service.Envelope[T]) *Failure {
	fallback := MessageGenerateFailed
	if mode == ModeEdit {
		fallback = MessageEditFailed
	}
	return &Failure{
		Kind:    FailureRejected,
		Mode:    mode,
		Message: firstNonEmpty(env.Message, fallback),
		Fields:  env.Errors,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
