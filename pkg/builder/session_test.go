package builder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-resumeform/pkg/builder"
	"github.com/goliatone/go-resumeform/pkg/catalog"
	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/render"
	"github.com/goliatone/go-resumeform/pkg/service"
	"github.com/goliatone/go-resumeform/pkg/state"
	"github.com/goliatone/go-resumeform/pkg/submission"
	"github.com/goliatone/go-resumeform/pkg/testsupport"
)

func newSession(t *testing.T, svc service.Service) *builder.Session {
	t.Helper()
	s, err := builder.New(svc)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func fillFresher(t *testing.T, s *builder.Session) {
	t.Helper()
	set := func(id string, v any) {
		if err := s.SetScalar(model.FieldPath(id), v); err != nil {
			t.Fatalf("set %s: %v", id, err)
		}
	}
	set("personalInfo.fullName", "Ada Lovelace")
	set("personalInfo.email", "ada@example.com")
	set("personalInfo.phone", "+44 20 7946 0018")
	set("summary", "Mathematician writing the first published algorithm.")
	set("skills", "Go, Rust, C++")
	education := model.FieldPath("education")
	if err := s.SetArrayItemField(education, 0, "institution", "University of London"); err != nil {
		t.Fatalf("set institution: %v", err)
	}
	if err := s.SetArrayItemField(education, 0, "degree", "Mathematics"); err != nil {
		t.Fatalf("set degree: %v", err)
	}
}

func findWidget(widgets []render.Widget, id string) render.Widget {
	for _, w := range widgets {
		if w.ID() == id {
			return w
		}
	}
	return nil
}

func TestSelectTypeInitialisesArrays(t *testing.T) {
	s := newSession(t, &testsupport.StubService{})
	if err := s.SelectType("UNKNOWN"); !errors.Is(err, builder.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if err := s.SelectType(catalog.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}

	values := s.Values()
	education, _ := values["education"].([]state.Item)
	if len(education) != 1 {
		t.Fatalf("education should start with one item, got %d", len(education))
	}
	if s.Valid() {
		t.Fatalf("empty form must not be valid")
	}

	rep, ok := findWidget(s.Widgets(), "education").(*render.Repeater)
	if !ok {
		t.Fatalf("education widget is not a repeater")
	}
	if len(rep.Items) != 1 || rep.Items[0].Removable {
		t.Fatalf("single item at minItems must not be removable: %#v", rep.Items)
	}
	if err := rep.Items[0].Remove(); !errors.Is(err, render.ErrNotRemovable) {
		t.Fatalf("expected ErrNotRemovable, got %v", err)
	}
	if err := s.RemoveArrayItem(model.FieldPath("education"), 0); !errors.Is(err, state.ErrBelowMinItems) {
		t.Fatalf("store must enforce the floor, got %v", err)
	}
}

func TestRequiredTextErrorLifecycle(t *testing.T) {
	s := newSession(t, &testsupport.StubService{})
	if err := s.SelectType(catalog.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}
	id := "personalInfo.fullName"
	if got := s.Errors()[id]; got != "Full Name is required" {
		t.Fatalf("error for %s = %q", id, got)
	}
	if err := s.SetScalar(model.FieldPath(id), "Ada"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := s.Errors()[id]; ok {
		t.Fatalf("error for %s should be cleared", id)
	}
}

func TestArrayItemErrorsAreIndependent(t *testing.T) {
	s := newSession(t, &testsupport.StubService{})
	if err := s.SelectType(catalog.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}
	education := model.FieldPath("education")
	if err := s.AddArrayItem(education); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.SetArrayItemField(education, 0, "institution", "MIT"); err != nil {
		t.Fatalf("set: %v", err)
	}

	errs := s.Errors()
	if _, ok := errs["education.0.institution"]; ok {
		t.Fatalf("item 0 institution should be valid")
	}
	if _, ok := errs["education.1.institution"]; !ok {
		t.Fatalf("item 1 institution should still be invalid: %v", errs.Keys())
	}

	rep := findWidget(s.Widgets(), "education").(*render.Repeater)
	if !rep.Items[0].Removable || !rep.Items[1].Removable {
		t.Fatalf("items above minItems should be removable")
	}
	if err := rep.Items[1].Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Errors()["education.1.institution"]; ok {
		t.Fatalf("errors of removed item should disappear")
	}
}

func TestWidgetEventsRevalidate(t *testing.T) {
	s := newSession(t, &testsupport.StubService{})
	if err := s.SelectType(catalog.TypeExperienced); err != nil {
		t.Fatalf("select: %v", err)
	}
	input := findWidget(s.Widgets(), "personalInfo.email").(*render.TextInput)
	if err := input.Change("not-an-email"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if got := s.Errors()["personalInfo.email"]; got != "Please enter a valid email address" {
		t.Fatalf("email error = %q", got)
	}

	upload := findWidget(s.Widgets(), "existingResume").(*render.FileUpload)
	before := s.Values()["existingResume"]
	err := upload.Pick(&model.File{Name: "photo.png", Size: 10})
	var rejection *render.Rejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if diff := cmp.Diff(before, s.Values()["existingResume"]); diff != "" {
		t.Fatalf("rejected pick mutated state (-before +after):\n%s", diff)
	}
}

func TestSubmitRefusesInvalidForm(t *testing.T) {
	stub := &testsupport.StubService{}
	s := newSession(t, stub)
	if err := s.SelectType(catalog.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, submission.ErrFormInvalid) {
		t.Fatalf("expected ErrFormInvalid, got %v", err)
	}
	if s.Notice() != submission.MessageInvalidForm || len(stub.Calls()) != 0 {
		t.Fatalf("notice=%q calls=%d", s.Notice(), len(stub.Calls()))
	}
}

func TestSubmitSendsSplitSkills(t *testing.T) {
	stub := &testsupport.StubService{
		OnGenerate: func(req service.Request) (service.Envelope[map[string]any], error) {
			return service.Envelope[map[string]any]{Success: true, Data: map[string]any{
				"_id":    "r1",
				"pdfUrl": "https://files.example.com/r1.pdf",
			}}, nil
		},
	}
	s := newSession(t, stub)
	if err := s.SelectType(catalog.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}
	fillFresher(t, s)
	if !s.Valid() {
		t.Fatalf("filled form should be valid, errors: %v", s.Errors())
	}
	if s.Status() != "All required fields are completed" {
		t.Fatalf("status = %q", s.Status())
	}

	result, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	payload := stub.Calls()[0].Request.Payload
	if diff := cmp.Diff([]string{"Go", "Rust", "C++"}, payload["skills"]); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}
	if result.Document.ID != "r1" || s.Result() != result || s.Notice() != submission.MessageGenerated {
		t.Fatalf("unexpected result %#v notice=%q", result, s.Notice())
	}
}

func TestSubmitWhilePendingIssuesOneRequest(t *testing.T) {
	stub := &testsupport.StubService{Gate: make(chan struct{}), Started: make(chan struct{}, 1)}
	s := newSession(t, stub)
	if err := s.SelectType(catalog.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}
	fillFresher(t, s)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	<-stub.Started

	if !s.Busy() {
		t.Fatalf("session should be busy while the request is outstanding")
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, builder.ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	close(stub.Gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if n := stub.CallCount("generate"); n != 1 {
		t.Fatalf("generate calls = %d, want 1", n)
	}
	if s.Busy() {
		t.Fatalf("session should be idle after the answer")
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	stub := &testsupport.StubService{Gate: make(chan struct{}), Started: make(chan struct{}, 1)}
	s := newSession(t, stub)
	if err := s.SelectType(catalog.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}
	fillFresher(t, s)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	<-stub.Started
	s.Reset()
	close(stub.Gate)

	if err := <-done; !errors.Is(err, builder.ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", err)
	}
	if s.Result() != nil || s.Notice() != "" {
		t.Fatalf("stale response touched the session: result=%v notice=%q", s.Result(), s.Notice())
	}
	if got := s.Values()["personalInfo.fullName"]; got != "" {
		t.Fatalf("reset should restore initial values, got %q", got)
	}
}

func TestSubmitFailureMapsRemoteErrors(t *testing.T) {
	stub := &testsupport.StubService{
		OnGenerate: func(service.Request) (service.Envelope[map[string]any], error) {
			return service.Envelope[map[string]any]{}, &service.StatusError{
				StatusCode: 422,
				Message:    "Validation failed",
				Errors: map[string][]string{
					"/body/education/0/degree": {"Degree is not recognised"},
					"":                         {"Try again later"},
				},
			}
		},
	}
	s := newSession(t, stub)
	if err := s.SelectType(catalog.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}
	fillFresher(t, s)

	_, err := s.Submit(context.Background())
	var failure *submission.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected failure, got %v", err)
	}
	if s.Notice() != "Validation failed" {
		t.Fatalf("notice = %q", s.Notice())
	}
	if got := s.Errors()["education.0.degree"]; got != "Degree is not recognised" {
		t.Fatalf("remote error = %q", got)
	}
	if diff := cmp.Diff([]string{"Try again later"}, s.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if !s.Valid() {
		t.Fatalf("remote errors must not block a retry")
	}

	if err := s.SetArrayItemField(model.FieldPath("education"), 0, "degree", "Pure Mathematics"); err != nil {
		t.Fatalf("set degree: %v", err)
	}
	if _, ok := s.Errors()["education.0.degree"]; ok {
		t.Fatalf("editing the field should clear its remote error")
	}
}

func TestLoadForEditDefaultsType(t *testing.T) {
	stub := &testsupport.StubService{
		OnGet: func(id string) (service.Envelope[map[string]any], error) {
			return service.Envelope[map[string]any]{Success: true, Data: map[string]any{
				"_id":          id,
				"personalInfo": map[string]any{"fullName": "Grace Hopper"},
				"skills":       []any{"COBOL", "FLOW-MATIC"},
			}}, nil
		},
	}
	s := newSession(t, stub)
	if err := s.LoadForEdit(context.Background(), "g1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	form, ok := s.Form()
	if !ok || form.Type != catalog.TypeFresher || s.EditID() != "g1" {
		t.Fatalf("form=%q ok=%v edit=%q", form.Type, ok, s.EditID())
	}
	values := s.Values()
	if values["personalInfo.fullName"] != "Grace Hopper" || values["skills"] != "COBOL, FLOW-MATIC" {
		t.Fatalf("unexpected values %#v", values)
	}

	fillFresher(t, s)
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if n := stub.CallCount("edit"); n != 1 {
		t.Fatalf("edit calls = %d", n)
	}
}

func TestLoadForEditFailure(t *testing.T) {
	stub := &testsupport.StubService{
		OnGet: func(string) (service.Envelope[map[string]any], error) {
			return service.Envelope[map[string]any]{}, &service.StatusError{StatusCode: 404}
		},
	}
	s := newSession(t, stub)
	err := s.LoadForEdit(context.Background(), "missing")
	if !errors.Is(err, builder.ErrLoadFailed) || !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("unexpected error %v", err)
	}
	if s.Notice() != builder.MessageLoadError {
		t.Fatalf("notice = %q", s.Notice())
	}
	if _, ok := s.Form(); ok {
		t.Fatalf("failed load must not select a form")
	}
}

func TestLoadForEditNotices(t *testing.T) {
	cases := []struct {
		name    string
		env     service.Envelope[map[string]any]
		wantErr error
		notice  string
	}{
		{
			name:    "unsuccessful envelope",
			env:     service.Envelope[map[string]any]{Success: false},
			wantErr: builder.ErrLoadFailed,
			notice:  builder.MessageLoadFailed,
		},
		{
			name:    "service message",
			env:     service.Envelope[map[string]any]{Success: false, Message: "Resume is locked"},
			wantErr: builder.ErrLoadFailed,
			notice:  "Resume is locked",
		},
		{
			name:    "unknown resume type",
			env:     service.Envelope[map[string]any]{Success: true, Data: map[string]any{"resumeType": "INTERN"}},
			wantErr: builder.ErrUnknownType,
			notice:  builder.MessageLoadFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &testsupport.StubService{
				OnGet: func(string) (service.Envelope[map[string]any], error) { return tc.env, nil },
			}
			s := newSession(t, stub)
			if err := s.LoadForEdit(context.Background(), "r1"); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if s.Notice() != tc.notice {
				t.Fatalf("notice = %q, want %q", s.Notice(), tc.notice)
			}
			if _, ok := s.Form(); ok {
				t.Fatalf("failed load must not select a form")
			}
		})
	}
}

func TestMutationsWithoutFormAreRefused(t *testing.T) {
	s := newSession(t, &testsupport.StubService{})
	if err := s.SetScalar(model.FieldPath("summary"), "x"); !errors.Is(err, builder.ErrNoForm) {
		t.Fatalf("expected ErrNoForm, got %v", err)
	}
	if s.Widgets() != nil {
		t.Fatalf("no widgets without a form")
	}
}
