package vanilla_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-resumeform/pkg/catalog"
	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/render"
	"github.com/goliatone/go-resumeform/pkg/renderers/vanilla"
	"github.com/goliatone/go-resumeform/pkg/resume"
	"github.com/goliatone/go-resumeform/pkg/state"
	"github.com/goliatone/go-resumeform/pkg/testsupport"
	"github.com/goliatone/go-resumeform/pkg/validation"
)

func newPage(t *testing.T, mutate func(*state.Store)) render.Page {
	t.Helper()

	form := testsupport.MustForm(t, catalog.TypeFresher)
	store := state.New(form)
	if mutate != nil {
		mutate(store)
	}
	errs := validation.Validate(store.Values(), form.Fields)
	return render.Page{
		Form:    form,
		Widgets: render.DispatchForm(form, store.Values(), errs, store),
		Errors:  errs,
	}
}

func mustRender(t *testing.T, r *vanilla.Renderer, page render.Page) string {
	t.Helper()

	out, err := r.Render(context.Background(), page)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRendererMetadata(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r.Name() != "vanilla" {
		t.Fatalf("unexpected name %q", r.Name())
	}
	if !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRenderFormWidgets(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	page := newPage(t, func(s *state.Store) {
		if err := s.AddArrayItem(model.Path{Field: "languages"}); err != nil {
			t.Fatalf("add language: %v", err)
		}
	})
	html := mustRender(t, r, page)

	for _, want := range []string{
		`<h2>Fresher Resume</h2>`,
		`data-resume-type="FRESHER"`,
		`id="rf-personalInfo-fullName"`,
		`name="personalInfo.fullName"`,
		`Full Name *`,
		`type="email"`,
		`<textarea id="rf-summary"`,
		`<legend>Languages</legend>`,
		`Languages #1`,
		`name="languages.0.proficiency"`,
		`<option value="Native">Native</option>`,
		`name="_add" value="languages"`,
		`No projects added yet`,
		`class="rf-error" id="rf-personalInfo-fullName-error"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered form missing %q", want)
		}
	}
	if strings.Contains(html, "&lt;div") {
		t.Fatalf("nested widget markup was escaped:\n%s", html)
	}
}

func TestRenderSummaryAndBusyState(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	page := newPage(t, nil)
	page.Options = render.RenderOptions{
		Action:     "/resume",
		Hidden:     map[string]string{"resumeType": "FRESHER", "editId": "abc"},
		FormErrors: []string{"Rate limit exceeded. Please wait a minute before trying again.", " "},
		Busy:       true,
	}
	html := mustRender(t, r, page)

	for _, want := range []string{
		`action="/resume"`,
		page.Errors.Summary(),
		`Rate limit exceeded. Please wait a minute before trying again.`,
		`disabled aria-busy="true"`,
		`Generating...`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered form missing %q", want)
		}
	}

	editID := strings.Index(html, `name="editId"`)
	resumeType := strings.Index(html, `name="resumeType"`)
	if editID < 0 || resumeType < 0 || editID > resumeType {
		t.Fatalf("expected hidden fields sorted by name")
	}
	if strings.Count(html, "<li>") != 1 {
		t.Fatalf("expected blank form errors to be dropped")
	}
}

func TestRenderSelectedOptionAndFile(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	page := newPage(t, func(s *state.Store) {
		languages := model.Path{Field: "languages"}
		if err := s.AddArrayItem(languages); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := s.SetArrayItemField(languages, 0, "proficiency", "Advanced"); err != nil {
			t.Fatalf("set: %v", err)
		}
	})
	html := mustRender(t, r, page)
	if !strings.Contains(html, `<option value="Advanced" selected>Advanced</option>`) {
		t.Fatalf("expected selected option:\n%s", html)
	}

	experienced := testsupport.MustForm(t, catalog.TypeExperienced)
	file := &model.File{Name: "current.pdf", Size: 2048, ContentType: "application/pdf"}
	upload, ok := experienced.Field("existingResume")
	if !ok {
		t.Fatalf("experienced form has no existingResume field")
	}
	widget := render.Dispatch(upload, model.Path{Field: upload.ID}, file, nil, nil)
	html = mustRender(t, r, render.Page{Form: experienced, Widgets: []render.Widget{widget}})
	for _, want := range []string{`current.pdf`, `name="_clear"`} {
		if !strings.Contains(html, want) {
			t.Errorf("file widget missing %q", want)
		}
	}
}

func TestRenderEscapesValues(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	page := newPage(t, func(s *state.Store) {
		if err := s.SetScalar(model.Path{Field: "summary"}, `<script>alert(1)</script>`); err != nil {
			t.Fatalf("set: %v", err)
		}
	})
	html := mustRender(t, r, page)
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected script to be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatalf("expected escaped script in output")
	}
}

func TestChromeClassesOverride(t *testing.T) {
	r, err := vanilla.New(vanilla.WithChromeClasses(vanilla.ChromeClasses{
		Form:  "card rf-spoof",
		Field: "stack",
	}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := mustRender(t, r, newPage(t, nil))
	if !strings.Contains(html, `class="rf-form card"`) {
		t.Fatalf("expected form override appended")
	}
	if strings.Contains(html, "rf-spoof") {
		t.Fatalf("expected reserved prefix dropped")
	}
	if !strings.Contains(html, `class="rf-field stack`) {
		t.Fatalf("expected field override appended")
	}
}

func TestInlineStylesheet(t *testing.T) {
	r, err := vanilla.New(vanilla.WithInlineStylesheet(true))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	html := mustRender(t, r, newPage(t, nil))
	if !strings.HasPrefix(html, "<style>") || !strings.Contains(html, ".rf-form") {
		t.Fatalf("expected inline stylesheet")
	}
}

func TestRenderPreviewSanitizesText(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	doc := resume.Document{
		ResumeType:   catalog.TypeExperienced,
		PersonalInfo: resume.PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
		Summary:      `Engineer<script>alert(1)</script> with <b>range</b>`,
		Skills:       []string{"Go", " ", "SQL"},
		WorkExperience: []resume.Experience{
			{Company: "Engines Ltd", Position: "Analyst", StartDate: "1842", Current: true},
		},
		Education: []resume.Education{
			{Institution: "Home", Degree: "Mathematics", GPA: "4"},
		},
		Projects: []resume.Project{
			{Name: "Notes", Technologies: []string{"Go", "pongo2"}},
		},
		Languages: []resume.Language{{Name: "English", Proficiency: "Native"}, {Name: ""}},
		PDFURL:    "/files/ada.pdf",
	}

	out, err := r.RenderPreview(context.Background(), doc)
	if err != nil {
		t.Fatalf("render preview: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`<h1>Ada Lovelace</h1>`,
		`<b>range</b>`,
		`Analyst - Engines Ltd`,
		`1842 - Present`,
		`Mathematics - Home`,
		`GPA: 4`,
		`Tech: Go, pongo2`,
		`English (Native)`,
		`href="/files/ada.pdf"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("preview missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") || strings.Contains(html, "alert(1)") {
		t.Fatalf("expected script stripped from summary")
	}
	if strings.Count(html, "<li>") != 3 {
		t.Fatalf("expected blank skills and languages dropped, got %d items", strings.Count(html, "<li>"))
	}
}

func TestRenderPreviewDropsUnsafeLinks(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	doc := resume.Document{
		PersonalInfo: resume.PersonalInfo{FullName: "Ada"},
		Projects: []resume.Project{
			{Name: "Bad", URL: "javascript:alert(document.cookie)"},
			{Name: "Mixed", URL: " JaVaScRiPt:alert(1)"},
			{Name: "Data", URL: "data:text/html,<script>alert(1)</script>"},
			{Name: "Good", URL: "https://example.com/engine"},
		},
		PDFURL: "javascript:alert(2)",
	}

	out, err := r.RenderPreview(context.Background(), doc)
	if err != nil {
		t.Fatalf("render preview: %v", err)
	}
	html := string(out)
	if strings.Count(html, "href=") != 1 || !strings.Contains(html, `href="https://example.com/engine"`) {
		t.Fatalf("expected only the https link rendered as href:\n%s", html)
	}
	if strings.Contains(html, "Download PDF") {
		t.Fatalf("expected unsafe artifact link dropped")
	}
	if !strings.Contains(html, "javascript:alert(document.cookie)") {
		t.Fatalf("expected unsafe project url kept as plain text")
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected data url text escaped")
	}
}

func TestTemplatesDirOverridesBundledTemplates(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	custom := []byte(`<main class="custom">{{ doc.name }}</main>`)
	if err := os.WriteFile(filepath.Join(dir, "templates", "preview.tmpl"), custom, 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	r, err := vanilla.New(vanilla.WithTemplatesDir(dir))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.RenderPreview(context.Background(), resume.Document{PersonalInfo: resume.PersonalInfo{FullName: "Ada"}})
	if err != nil {
		t.Fatalf("render preview: %v", err)
	}
	if string(out) != `<main class="custom">Ada</main>` {
		t.Fatalf("expected overridden preview, got %q", out)
	}

	// form.tmpl is not overridden, so it still comes from the bundle.
	html := mustRender(t, r, newPage(t, nil))
	if !strings.Contains(html, `name="_submit"`) {
		t.Fatalf("expected bundled form template")
	}

	if _, err := vanilla.New(vanilla.WithTemplatesDir(filepath.Join(dir, "missing"))); err == nil {
		t.Fatalf("expected error for missing templates dir")
	}
}

func TestRenderPreviewUntitled(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := r.RenderPreview(context.Background(), resume.Document{})
	if err != nil {
		t.Fatalf("render preview: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "Untitled Resume") {
		t.Fatalf("expected untitled heading")
	}
	if strings.Contains(html, "<section>") {
		t.Fatalf("expected empty sections omitted")
	}
}

func TestAssetsFSServesStylesheet(t *testing.T) {
	data, err := fs.ReadFile(vanilla.AssetsFS(), vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	if !strings.Contains(string(data), ".rf-form") {
		t.Fatalf("unexpected stylesheet contents")
	}
}
