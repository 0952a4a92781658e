package testsupport

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-resumeform/pkg/resume"
	"github.com/goliatone/go-resumeform/pkg/service"
)

// Call records one request received by a StubService.
type Call struct {
	Method  string
	ID      string
	Request service.Request
}

// StubService is an in-memory service.Service. Responses come from the
// function fields; a nil function answers with a successful empty envelope.
// Gate, when set, blocks Generate and Edit until it is closed or receives.
type StubService struct {
	mu    sync.Mutex
	calls []Call

	Gate chan struct{}
	// Started receives once per Generate or Edit call before Gate is awaited.
	Started chan struct{}

	OnList     func() (service.Envelope[[]resume.Document], error)
	OnGet      func(id string) (service.Envelope[map[string]any], error)
	OnGenerate func(req service.Request) (service.Envelope[map[string]any], error)
	OnEdit     func(id string, req service.Request) (service.Envelope[map[string]any], error)
	OnDelete   func(id string) (service.Envelope[struct{}], error)
	Artifacts  map[string]string
}

var _ service.Service = (*StubService)(nil)

// Calls returns a copy of the recorded calls.
func (s *StubService) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts recorded calls of method.
func (s *StubService) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (s *StubService) record(call Call) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *StubService) wait(ctx context.Context) error {
	if s.Started != nil {
		s.Started <- struct{}{}
	}
	if s.Gate == nil {
		return nil
	}
	select {
	case <-s.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *StubService) ListResumes(context.Context) (service.Envelope[[]resume.Document], error) {
	s.record(Call{Method: "list"})
	if s.OnList != nil {
		return s.OnList()
	}
	return service.Envelope[[]resume.Document]{Success: true}, nil
}

func (s *StubService) GetResume(_ context.Context, id string) (service.Envelope[map[string]any], error) {
	s.record(Call{Method: "get", ID: id})
	if s.OnGet != nil {
		return s.OnGet(id)
	}
	return service.Envelope[map[string]any]{Success: true, Data: map[string]any{}}, nil
}

func (s *StubService) Generate(ctx context.Context, req service.Request) (service.Envelope[map[string]any], error) {
	s.record(Call{Method: "generate", Request: req})
	if err := s.wait(ctx); err != nil {
		return service.Envelope[map[string]any]{}, err
	}
	if s.OnGenerate != nil {
		return s.OnGenerate(req)
	}
	return service.Envelope[map[string]any]{Success: true, Data: map[string]any{}}, nil
}

func (s *StubService) Edit(ctx context.Context, id string, req service.Request) (service.Envelope[map[string]any], error) {
	s.record(Call{Method: "edit", ID: id, Request: req})
	if err := s.wait(ctx); err != nil {
		return service.Envelope[map[string]any]{}, err
	}
	if s.OnEdit != nil {
		return s.OnEdit(id, req)
	}
	return service.Envelope[map[string]any]{Success: true, Data: map[string]any{}}, nil
}

func (s *StubService) Delete(_ context.Context, id string) (service.Envelope[struct{}], error) {
	s.record(Call{Method: "delete", ID: id})
	if s.OnDelete != nil {
		return s.OnDelete(id)
	}
	return service.Envelope[struct{}]{Success: true}, nil
}

func (s *StubService) Download(_ context.Context, artifactURL string, dst io.Writer) (int64, error) {
	s.record(Call{Method: "download", ID: artifactURL})
	body, ok := s.Artifacts[artifactURL]
	if !ok {
		return 0, &service.StatusError{StatusCode: 404}
	}
	return io.Copy(dst, strings.NewReader(body))
}
