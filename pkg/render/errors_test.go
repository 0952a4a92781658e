package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/render"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

func errorForm() model.Form {
	return model.Form{
		Type: "FRESHER",
		Fields: []model.Field{
			{ID: "personalInfo.fullName", Label: "Full Name", Kind: model.KindText},
			{ID: "personalInfo.email", Label: "Email", Kind: model.KindEmail},
			{ID: "skills", Label: "Skills", Kind: model.KindText, Delimiter: ","},
			{
				ID: "education", Label: "Education", Kind: model.KindArray,
				Template: []model.Field{
					{ID: "institution", Kind: model.KindText},
					{ID: "degree", Kind: model.KindText},
				},
			},
		},
	}
}

func TestMapErrorPayloadKeepsItemIndices(t *testing.T) {
	payload := map[string][]string{
		"/body/personalInfo/fullName": {"Name is required"},
		"data.personalInfo.email":     {"Email invalid", " Email invalid "},
		"$.body.skills[0]":            {"Skills must be unique"},
		"education[1].degree":         {"Degree unknown"},
		"/education/0":                {"Entry malformed"},
		"non_field_errors":            {"Form level error"},
		"request/body/unknown-field":  {"Should fall back to form errors"},
		"":                            {"Unscoped form error"},
	}

	mapped := render.MapErrorPayload(errorForm(), payload)

	wantFields := map[string][]string{
		"personalInfo.fullName": {"Name is required"},
		"personalInfo.email":    {"Email invalid"},
		"skills":                {"Skills must be unique"},
		"education.1.degree":    {"Degree unknown"},
		"education":             {"Entry malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorMappingMergeKeepsLocalMessages(t *testing.T) {
	mapping := render.ErrorMapping{Fields: map[string][]string{
		"skills":             {"Too many", "Duplicates"},
		"personalInfo.email": {"Server says no"},
	}}
	local := validation.ErrorMap{"personalInfo.email": "Please enter a valid email address"}

	merged := mapping.Merge(local)
	want := validation.ErrorMap{
		"skills":             "Too many; Duplicates",
		"personalInfo.email": "Please enter a valid email address",
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
	if len(local) != 1 {
		t.Fatalf("input map was mutated: %v", local)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
