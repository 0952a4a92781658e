package submission_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-resumeform/pkg/catalog"
	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/service"
	"github.com/goliatone/go-resumeform/pkg/state"
	"github.com/goliatone/go-resumeform/pkg/submission"
	"github.com/goliatone/go-resumeform/pkg/testsupport"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

func sampleForm() model.Form {
	return model.Form{
		Type: "FRESHER",
		Fields: []model.Field{
			{ID: "personalInfo.fullName", Label: "Full Name", Kind: model.KindText, Required: true},
			{ID: "personalInfo.email", Label: "Email", Kind: model.KindEmail},
			{ID: "skills", Label: "Skills", Kind: model.KindText, Required: true, Delimiter: ","},
			{ID: "resumeFile", Label: "Resume", Kind: model.KindFile, Accept: ".pdf"},
			{
				ID: "projects", Label: "Projects", Kind: model.KindArray,
				Template: []model.Field{
					{ID: "name", Label: "Name", Kind: model.KindText},
					{ID: "technologies", Label: "Technologies", Kind: model.KindText, Delimiter: ","},
				},
			},
		},
	}
}

func TestBuildPayloadSplitsAndNests(t *testing.T) {
	values := state.Values{
		"personalInfo.fullName": "Ada Lovelace",
		"personalInfo.email":    "ada@example.com",
		"skills":                "Go, Rust, C++",
		"resumeFile":            "",
		"projects": []state.Item{
			{"name": "Engine", "technologies": " Go ,, SQL ", "_id": "p1"},
		},
	}

	got := submission.BuildPayload(sampleForm(), values)
	want := map[string]any{
		"personalInfo": map[string]any{"fullName": "Ada Lovelace", "email": "ada@example.com"},
		"skills":       []string{"Go", "Rust", "C++"},
		"resumeFile":   nil,
		"projects": []map[string]any{
			{"name": "Engine", "technologies": []string{"Go", "SQL"}, "_id": "p1"},
		},
		"resumeType": "FRESHER",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		raw, delim string
		want       []string
	}{
		{raw: "Go, Rust, C++", delim: ",", want: []string{"Go", "Rust", "C++"}},
		{raw: " , ,", delim: ",", want: []string{}},
		{raw: "Led team\n\nShipped v2\n", delim: "\n", want: []string{"Led team", "Shipped v2"}},
		{raw: "  solo ", delim: "", want: []string{"solo"}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, submission.SplitList(tc.raw, tc.delim)); diff != "" {
			t.Fatalf("SplitList(%q) mismatch (-want +got):\n%s", tc.raw, diff)
		}
	}
}

func TestNormalizeFillsFallbacks(t *testing.T) {
	got := submission.Normalize(map[string]any{
		"experience": []any{map[string]any{"company": "Analytical Engines"}},
		"skills":     nil,
		"pdfUrl":     "https://files.example.com/a.pdf",
	})
	want := map[string]any{
		"experience":     []any{map[string]any{"company": "Analytical Engines"}},
		"workExperience": []any{map[string]any{"company": "Analytical Engines"}},
		"education":      []any{},
		"skills":         []any{},
		"projects":       []any{},
		"languages":      []any{},
		"personalInfo":   map[string]any{},
		"pdfUrl":         "https://files.example.com/a.pdf",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}

	preferred := submission.Normalize(map[string]any{
		"workExperience": []any{"a"},
		"experience":     []any{"b"},
	})
	if diff := cmp.Diff([]any{"a"}, preferred["workExperience"]); diff != "" {
		t.Fatalf("workExperience should win (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		mode submission.Mode
		err  error
		kind submission.FailureKind
		msg  string
	}{
		{
			name: "rate limit default",
			err:  &service.StatusError{StatusCode: 429},
			kind: submission.FailureRateLimited,
			msg:  submission.MessageRateLimited,
		},
		{
			name: "rate limit message",
			err:  &service.StatusError{StatusCode: 429, Message: "Quota reached"},
			kind: submission.FailureRateLimited,
			msg:  "Quota reached",
		},
		{
			name: "message and error",
			err:  &service.StatusError{StatusCode: 500, Message: "Generation failed", Err: "model timeout"},
			kind: submission.FailureService,
			msg:  "Generation failed - model timeout",
		},
		{
			name: "bare status",
			err:  &service.StatusError{StatusCode: 502},
			kind: submission.FailureService,
			msg:  submission.MessageServiceFailure,
		},
		{
			name: "transport",
			err:  errors.New("dial tcp: connection refused"),
			kind: submission.FailureService,
			msg:  submission.MessageServiceFailure,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			failure := submission.Classify(tc.mode, tc.err)
			if failure.Kind != tc.kind || failure.Message != tc.msg {
				t.Fatalf("Classify() = %v %q, want %v %q", failure.Kind, failure.Message, tc.kind, tc.msg)
			}
			if !errors.Is(failure, tc.err) {
				t.Fatalf("failure should wrap %v", tc.err)
			}
		})
	}
}

func TestRejectedFallbacks(t *testing.T) {
	gen := submission.Rejected(submission.ModeGenerate, service.Envelope[map[string]any]{})
	edit := submission.Rejected(submission.ModeEdit, service.Envelope[map[string]any]{})
	custom := submission.Rejected(submission.ModeEdit, service.Envelope[map[string]any]{Message: "Document locked"})
	if gen.Message != submission.MessageGenerateFailed || edit.Message != submission.MessageEditFailed || custom.Message != "Document locked" {
		t.Fatalf("unexpected messages %q %q %q", gen.Message, edit.Message, custom.Message)
	}
}

func validValues() state.Values {
	return state.Values{
		"personalInfo.fullName": "Ada Lovelace",
		"personalInfo.email":    "",
		"skills":                "Go, Rust, C++",
		"resumeFile":            "",
		"projects":              []state.Item{},
	}
}

func TestPipelineRefusesInvalidForm(t *testing.T) {
	stub := &testsupport.StubService{}
	p := submission.New(stub)

	_, err := p.Submit(context.Background(), submission.Request{
		Form:   sampleForm(),
		Values: validValues(),
		Errors: validation.ErrorMap{"skills": "Skills is required"},
	})
	if !errors.Is(err, submission.ErrFormInvalid) {
		t.Fatalf("expected ErrFormInvalid, got %v", err)
	}
	if len(stub.Calls()) != 0 || p.State() != submission.StateIdle {
		t.Fatalf("refused submission must not call the service (calls=%d state=%v)", len(stub.Calls()), p.State())
	}
}

func TestPipelineGenerateSuccess(t *testing.T) {
	stub := &testsupport.StubService{
		OnGenerate: func(req service.Request) (service.Envelope[map[string]any], error) {
			return service.Envelope[map[string]any]{Success: true, Data: map[string]any{
				"personalInfo": map[string]any{"fullName": "Ada Lovelace"},
				"skills":       []any{"Go"},
				"pdfUrl":       "https://files.example.com/ada.pdf",
			}}, nil
		},
	}
	p := submission.New(stub, submission.WithRequestIDs(func() string { return "req-42" }))

	result, err := p.Submit(context.Background(), submission.Request{Form: sampleForm(), Values: validValues()})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	calls := stub.Calls()
	if len(calls) != 1 || calls[0].Method != "generate" || calls[0].Request.ID != "req-42" {
		t.Fatalf("unexpected calls %#v", calls)
	}
	if diff := cmp.Diff([]string{"Go", "Rust", "C++"}, calls[0].Request.Payload["skills"]); diff != "" {
		t.Fatalf("skills payload mismatch (-want +got):\n%s", diff)
	}
	if result.Message != submission.MessageGenerated || result.RequestID != "req-42" {
		t.Fatalf("unexpected result %#v", result)
	}
	if result.Document.PDFURL != "https://files.example.com/ada.pdf" || result.Document.DisplayName() != "Ada Lovelace" {
		t.Fatalf("unexpected document %#v", result.Document)
	}
	if diff := cmp.Diff([]any{}, result.Data["education"]); diff != "" {
		t.Fatalf("education should default to empty list (-want +got):\n%s", diff)
	}
	if p.State() != submission.StateSucceeded {
		t.Fatalf("state = %v", p.State())
	}
}

func TestPipelineEditFailureReturnsToIdle(t *testing.T) {
	stub := &testsupport.StubService{
		OnEdit: func(id string, req service.Request) (service.Envelope[map[string]any], error) {
			return service.Envelope[map[string]any]{}, &service.StatusError{StatusCode: 429}
		},
	}
	p := submission.New(stub)

	_, err := p.Submit(context.Background(), submission.Request{Form: sampleForm(), Values: validValues(), EditID: "abc"})
	var failure *submission.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if failure.Kind != submission.FailureRateLimited || failure.Mode != submission.ModeEdit {
		t.Fatalf("unexpected failure %#v", failure)
	}
	if p.State() != submission.StateIdle {
		t.Fatalf("state after failure = %v, want idle", p.State())
	}
	if calls := stub.Calls(); len(calls) != 1 || calls[0].ID != "abc" {
		t.Fatalf("unexpected calls %#v", calls)
	}
}

func TestPipelineRejectedEnvelope(t *testing.T) {
	stub := &testsupport.StubService{
		OnGenerate: func(service.Request) (service.Envelope[map[string]any], error) {
			return service.Envelope[map[string]any]{Success: false}, nil
		},
	}
	_, err := submission.New(stub).Submit(context.Background(), submission.Request{Form: sampleForm(), Values: validValues()})
	var failure *submission.Failure
	if !errors.As(err, &failure) || failure.Message != submission.MessageGenerateFailed {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestPipelineRejectsConcurrentSubmit(t *testing.T) {
	stub := &testsupport.StubService{Gate: make(chan struct{}), Started: make(chan struct{}, 1)}
	p := submission.New(stub)
	req := submission.Request{Form: sampleForm(), Values: validValues()}

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background(), req)
		done <- err
	}()
	<-stub.Started

	if _, err := p.Submit(context.Background(), req); !errors.Is(err, submission.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if !p.State().Pending() {
		t.Fatalf("state = %v, want pending", p.State())
	}

	close(stub.Gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if n := stub.CallCount("generate"); n != 1 {
		t.Fatalf("generate calls = %d, want 1", n)
	}
}

func TestPipelineContractCheck(t *testing.T) {
	form := testsupport.MustForm(t, catalog.TypeFresher)
	store := state.New(form)
	languages := model.FieldPath("languages")
	if err := store.AddArrayItem(languages); err != nil {
		t.Fatalf("add language: %v", err)
	}
	if err := store.SetArrayItemField(languages, 0, "proficiency", "Fluent-ish"); err != nil {
		t.Fatalf("set proficiency: %v", err)
	}

	stub := &testsupport.StubService{}
	p := submission.New(stub, submission.WithContractCheck(true))

	_, err := p.Submit(context.Background(), submission.Request{Form: form, Values: store.Values()})
	var failure *submission.Failure
	if !errors.As(err, &failure) || failure.Kind != submission.FailureContract {
		t.Fatalf("expected contract failure, got %v", err)
	}
	if failure.Message != submission.MessageContract {
		t.Fatalf("unexpected contract message %q", failure.Message)
	}
	if _, ok := failure.Fields["/languages/0/proficiency"]; !ok {
		t.Fatalf("expected pointer to the select value, got %#v", failure.Fields)
	}
	if len(stub.Calls()) != 0 || p.State() != submission.StateIdle {
		t.Fatalf("contract failure must not reach the service")
	}
}

func TestPipelineContractAcceptsNumbers(t *testing.T) {
	form := model.Form{
		Type: "EXPERIENCED",
		Fields: []model.Field{
			{
				ID: "years", Label: "Years of Experience", Kind: model.KindNumber,
				Validation: &model.ValidationRule{Kind: model.ValidationRuleRange, Params: map[string]string{"min": "0", "max": "60"}},
			},
			{ID: "headline", Label: "Headline", Kind: model.KindText},
		},
	}
	values := state.Values{"years": 5, "headline": 42}
	errs := validation.Validate(values, form.Fields)
	if !errs.Valid() {
		t.Fatalf("expected numeric values to validate, got %v", errs)
	}

	stub := &testsupport.StubService{}
	p := submission.New(stub, submission.WithContractCheck(true))
	if _, err := p.Submit(context.Background(), submission.Request{Form: form, Values: values, Errors: errs}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if n := stub.CallCount("generate"); n != 1 {
		t.Fatalf("generate calls = %d, want 1", n)
	}
	if got := stub.Calls()[0].Request.Payload["years"]; got != 5 {
		t.Fatalf("expected number to pass through, got %#v", got)
	}
}
