package submission

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"

	"github.com/goliatone/go-resumeform/pkg/catalog"
	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/resume"
	"github.com/goliatone/go-resumeform/pkg/service"
	"github.com/goliatone/go-resumeform/pkg/state"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

// State is the position of a Pipeline in its submission lifecycle.
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateEditing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateEditing:
		return "editing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Pending reports whether a request is outstanding.
func (s State) Pending() bool {
	return s == StateGenerating || s == StateEditing
}

// MessageInvalidForm is the single warning surfaced when a submission is
// refused because the error map is not empty.
const MessageInvalidForm = "Please fix the errors before generating your resume"

const (
	MessageGenerated = "Resume generated successfully!"
	MessageUpdated   = "Resume updated successfully!"
)

var (
	// ErrFormInvalid refuses a submission while the error map has entries.
	ErrFormInvalid = errors.New("submission: form has validation errors")
	// ErrInFlight refuses a submission while another one is outstanding.
	ErrInFlight = errors.New("submission: a submission is already in progress")
)

// Request is one submission of a form's state. EditID selects the edit path.
type Request struct {
	Form   model.Form
	Values state.Values
	Errors validation.ErrorMap
	EditID string
}

// Result is a successful submission. Data is the normalized response and
// Document its typed view.
type Result struct {
	Mode      Mode
	RequestID string
	Message   string
	Data      map[string]any
	Document  resume.Document
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger routes lifecycle logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithContractCheck validates every payload against the form's request
// schema before sending it.
func WithContractCheck(enabled bool) Option {
	return func(p *Pipeline) {
		p.contract = enabled
	}
}

// WithRequestIDs replaces the request id generator.
func WithRequestIDs(next func() string) Option {
	return func(p *Pipeline) {
		if next != nil {
			p.newID = next
		}
	}
}

// Pipeline turns valid form state into one service request and classifies
// the outcome. A failed submission leaves the pipeline Idle so the caller can
// retry with the same state.
type Pipeline struct {
	svc      service.Service
	logger   *slog.Logger
	contract bool
	newID    func() string

	mu    sync.Mutex
	state State
}

// New returns an idle pipeline backed by svc.
func New(svc service.Service, opts ...Option) *Pipeline {
	p := &Pipeline{
		svc:    svc,
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Submit sends req to the service and blocks until it answers. It returns
// ErrFormInvalid when req.Errors is not empty, ErrInFlight when another
// submission is outstanding, and a *Failure for every service-side outcome
// that is not a success.
func (p *Pipeline) Submit(ctx context.Context, req Request) (*Result, error) {
	if !validation.IsFormValid(req.Errors) {
		p.logger.Warn("submission refused", "form", req.Form.Type, "errors", len(req.Errors))
		return nil, ErrFormInvalid
	}

	mode := ModeGenerate
	pending := StateGenerating
	if req.EditID != "" {
		mode = ModeEdit
		pending = StateEditing
	}
	if !p.begin(pending) {
		return nil, ErrInFlight
	}

	requestID := p.newID()
	logger := p.logger.With("form", req.Form.Type, "mode", mode.String(), "request_id", requestID)
	payload := BuildPayload(req.Form, req.Values)

	if p.contract {
		if err := catalog.CheckPayload(req.Form, payload); err != nil {
			return nil, p.fail(logger, contractFailure(mode, err))
		}
	}

	call := service.Request{ID: requestID, Payload: payload}
	var (
		env service.Envelope[map[string]any]
		err error
	)
	if mode == ModeEdit {
		env, err = p.svc.Edit(ctx, req.EditID, call)
	} else {
		env, err = p.svc.Generate(ctx, call)
	}
	if err != nil {
		return nil, p.fail(logger, Classify(mode, err))
	}
	if !env.Success {
		return nil, p.fail(logger, Rejected(mode, env))
	}

	data := Normalize(env.Data)
	doc, err := resume.FromMap(data)
	if err != nil {
		logger.Warn("response does not decode as a resume document", "error", err)
	}

	result := &Result{Mode: mode, RequestID: requestID, Data: data, Document: doc, Message: MessageGenerated}
	if mode == ModeEdit {
		result.Message = MessageUpdated
	}
	p.transition(logger, StateSucceeded)
	return result, nil
}

func (p *Pipeline) begin(pending State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Pending() {
		return false
	}
	p.logger.Debug("submission state", "from", p.state.String(), "to", pending.String())
	p.state = pending
	return true
}

func (p *Pipeline) transition(logger *slog.Logger, to State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	logger.Debug("submission state", "from", p.state.String(), "to", to.String())
	p.state = to
}

func (p *Pipeline) fail(logger *slog.Logger, failure *Failure) error {
	logger.Warn("submission failed", "kind", failure.Kind.String(), "status", failure.StatusCode,
		"message", failure.Message, "error", failure.Err)
	p.transition(logger, StateFailed)
	p.transition(logger, StateIdle)
	return failure
}

func contractFailure(mode Mode, err error) *Failure {
	failure := &Failure{Kind: FailureContract, Mode: mode, Message: MessageContract, Err: err}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := "/" + strings.Join(schemaErr.JSONPointer(), "/")
		failure.Fields = map[string][]string{pointer: {schemaErr.Reason}}
	}
	return failure
}
