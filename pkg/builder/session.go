package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-resumeform/pkg/catalog"
	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/render"
	"github.com/goliatone/go-resumeform/pkg/service"
	"github.com/goliatone/go-resumeform/pkg/state"
	"github.com/goliatone/go-resumeform/pkg/submission"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

var (
	ErrNoForm        = errors.New("builder: no resume type selected")
	ErrUnknownType   = errors.New("builder: unknown resume type")
	ErrLoadFailed    = errors.New("builder: failed to load resume for editing")
	ErrStaleResponse = errors.New("builder: response belongs to a superseded form")
	ErrNoService     = errors.New("builder: no service configured")
	// ErrSubmissionInFlight refuses a submit while another is outstanding.
	ErrSubmissionInFlight = submission.ErrInFlight
)

const (
	// MessageLoadFailed is shown when the service answers without a document.
	MessageLoadFailed = "Failed to load resume for editing"
	// MessageLoadError is shown when the service could not be reached.
	MessageLoadError = "Error loading resume for editing"
)

// Option customises a Session.
type Option func(*Session)

// WithCatalog replaces the embedded resume type catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Session) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithLogger routes session, store and pipeline logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSubmissionOptions forwards options to the submission pipeline.
func WithSubmissionOptions(opts ...submission.Option) Option {
	return func(s *Session) {
		s.pipelineOpts = append(s.pipelineOpts, opts...)
	}
}

// Session owns one form editing flow: the selected resume type, its state
// store, the derived error map and the submission pipeline. Mutations
// revalidate synchronously before returning. Submit blocks until the service
// answers; while it is outstanding Busy reports true and further submits
// are refused.
type Session struct {
	catalog      *catalog.Catalog
	svc          service.Service
	logger       *slog.Logger
	pipelineOpts []submission.Option
	pipeline     *submission.Pipeline

	mu       sync.Mutex
	store    *state.Store
	selected bool
	editID   string
	errs     validation.ErrorMap
	remote   render.ErrorMapping
	notice   string
	result   *submission.Result
	epoch    uint64

	inFlight atomic.Bool
}

var _ render.Mutator = (*Session)(nil)

// New builds a session backed by svc. Without WithCatalog the embedded
// FRESHER and EXPERIENCED forms are used.
func New(svc service.Service, opts ...Option) (*Session, error) {
	s := &Session{
		svc:    svc,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		s.catalog = c
	}
	s.pipeline = submission.New(svc, append([]submission.Option{submission.WithLogger(s.logger)}, s.pipelineOpts...)...)
	return s, nil
}

// Types lists the selectable resume types.
func (s *Session) Types() []string {
	return s.catalog.Types()
}

// Catalog returns the catalog the session selects forms from.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// SelectType starts a new document of resumeType, discarding any values,
// results and edit target of the previous form.
func (s *Session) SelectType(resumeType string) error {
	form, ok := s.catalog.Form(resumeType)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownType, resumeType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.install(form, nil)
	s.editID = ""
	s.logger.Debug("resume type selected", "type", form.Type, "epoch", s.epoch)
	return nil
}

// LoadForEdit fetches the document id and fills the form of its resume type
// with it. Documents without a resume type are edited as FRESHER.
func (s *Session) LoadForEdit(ctx context.Context, id string) error {
	if s.svc == nil {
		return ErrNoService
	}
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	env, err := s.svc.GetResume(ctx, id)
	if err != nil {
		s.setNotice(MessageLoadError)
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, id, err)
	}
	if !env.Success || env.Data == nil {
		s.setNotice(firstNonEmpty(env.Message, MessageLoadFailed))
		return fmt.Errorf("%w: %s", ErrLoadFailed, id)
	}

	resumeType, _ := env.Data["resumeType"].(string)
	if strings.TrimSpace(resumeType) == "" {
		s.logger.Warn("resumeType missing from resume data, defaulting to FRESHER", "id", id)
		resumeType = catalog.TypeFresher
	}
	form, ok := s.catalog.Form(resumeType)
	if !ok {
		s.logger.Warn("resume has an unknown resumeType", "id", id, "resumeType", resumeType)
		s.setNotice(MessageLoadFailed)
		return fmt.Errorf("%w %q", ErrUnknownType, resumeType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Warn("discarding stale edit load", "id", id)
		return ErrStaleResponse
	}
	s.install(form, env.Data)
	s.editID = id
	return nil
}

// install replaces the active form. Callers hold mu.
func (s *Session) install(form model.Form, doc map[string]any) {
	s.epoch++
	if s.store == nil {
		s.store = state.New(form, state.WithLogger(s.logger))
	}
	if doc != nil {
		s.store.Load(form, doc)
	} else {
		s.store.Reset(form)
	}
	s.selected = true
	s.result = nil
	s.notice = ""
	s.remote = render.ErrorMapping{}
	s.revalidate()
}

func (s *Session) revalidate() {
	s.errs = validation.Validate(s.store.Values(), s.store.Form().Fields)
}

// Reset restores the initial values of the selected form and drops results
// and remote errors. A submission outstanding at reset time is discarded
// when it answers.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected {
		s.epoch++
		return
	}
	s.install(s.store.Form(), nil)
}

// Form returns the selected form.
func (s *Session) Form() (model.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected {
		return model.Form{}, false
	}
	return s.store.Form(), true
}

// Path resolves a runtime id such as "education.0.degree" against the
// selected form. It reports false when no form is selected or the id names
// no field.
func (s *Session) Path(id string) (model.Path, bool) {
	form, ok := s.Form()
	if !ok {
		return model.Path{}, false
	}
	return form.ResolvePath(id)
}

// EditID is the id of the document being edited, empty for new documents.
func (s *Session) EditID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editID
}

// Values returns a deep copy of the current form state.
func (s *Session) Values() state.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected {
		return state.Values{}
	}
	return s.store.Snapshot()
}

func (s *Session) SetScalar(path model.Path, value any) error {
	return s.mutate(path, func(st *state.Store) error { return st.SetScalar(path, value) })
}

func (s *Session) AddArrayItem(path model.Path) error {
	return s.mutate(path, func(st *state.Store) error { return st.AddArrayItem(path) })
}

func (s *Session) RemoveArrayItem(path model.Path, index int) error {
	return s.mutate(path, func(st *state.Store) error { return st.RemoveArrayItem(path, index) })
}

func (s *Session) SetArrayItemField(path model.Path, index int, key string, value any) error {
	return s.mutate(path.Item(index, key), func(st *state.Store) error {
		return st.SetArrayItemField(path, index, key, value)
	})
}

// mutate applies op and revalidates. Remote errors under the mutated scope
// are dropped since they described the previous value.
func (s *Session) mutate(scope model.Path, op func(*state.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected {
		return ErrNoForm
	}
	if err := op(s.store); err != nil {
		return err
	}
	s.revalidate()
	s.clearRemote(scope.String())
	return nil
}

func (s *Session) clearRemote(id string) {
	for key := range s.remote.Fields {
		if key == id || strings.HasPrefix(key, id+".") {
			delete(s.remote.Fields, key)
		}
	}
}

// Errors returns the local error map merged with field errors reported by
// the service on the last failed submission. Local messages win.
func (s *Session) Errors() validation.ErrorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote.Merge(s.errs)
}

// FormErrors are service messages that could not be tied to a field.
func (s *Session) FormErrors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.remote.Form...)
}

// Valid reports whether the local error map is empty.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected && validation.IsFormValid(s.errs)
}

// Status is the line shown next to the submit control.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs.Summary()
}

// Notice is the last transient message: a submission outcome or a load
// failure. It is cleared when a form is installed.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *Session) setNotice(msg string) {
	s.mu.Lock()
	s.notice = msg
	s.mu.Unlock()
}

// Widgets dispatches the selected form. Widget events mutate the session.
func (s *Session) Widgets() []render.Widget {
	s.mu.Lock()
	if !s.selected {
		s.mu.Unlock()
		return nil
	}
	form := s.store.Form()
	values := s.store.Values()
	errs := s.remote.Merge(s.errs)
	s.mu.Unlock()
	return render.DispatchForm(form, values, errs, s)
}

// Busy reports whether a submission is outstanding.
func (s *Session) Busy() bool {
	return s.inFlight.Load()
}

// Result is the last successful submission of the current form.
func (s *Session) Result() *submission.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Submit sends the current state to the service. It returns
// ErrSubmissionInFlight without a second request while one is outstanding,
// submission.ErrFormInvalid while the error map is not empty, and
// ErrStaleResponse when the form was reset or replaced before the answer
// arrived; a stale answer leaves the session untouched.
func (s *Session) Submit(ctx context.Context) (*submission.Result, error) {
	if s.svc == nil {
		return nil, ErrNoService
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	if !s.selected {
		s.mu.Unlock()
		return nil, ErrNoForm
	}
	epoch := s.epoch
	req := submission.Request{
		Form:   s.store.Form(),
		Values: s.store.Snapshot(),
		Errors: s.errs,
		EditID: s.editID,
	}
	s.mu.Unlock()

	result, err := s.pipeline.Submit(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Warn("discarding stale submission response", "form", req.Form.Type)
		return nil, ErrStaleResponse
	}

	var failure *submission.Failure
	switch {
	case err == nil:
		s.result = result
		s.notice = result.Message
		s.remote = render.ErrorMapping{}
		return result, nil
	case errors.Is(err, submission.ErrFormInvalid):
		s.notice = submission.MessageInvalidForm
	case errors.As(err, &failure):
		s.notice = failure.Message
		s.remote = render.MapErrorPayload(req.Form, failure.Fields)
	default:
		s.notice = submission.MessageServiceFailure
	}
	return nil, err
}
