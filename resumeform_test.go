package resumeform_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-resumeform"
	"github.com/goliatone/go-resumeform/pkg/builder"
	"github.com/goliatone/go-resumeform/pkg/testsupport"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(resumeform.AssetsFS(), "resumeform.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".rf-form") {
		t.Fatalf("expected stylesheet to style the form chrome")
	}
}

func TestEmbeddedTemplatesIncludeForm(t *testing.T) {
	if _, err := fs.Stat(resumeform.EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
}

func TestNewHTTPServiceRejectsBadURL(t *testing.T) {
	if _, err := resumeform.NewHTTPService("localhost:5000"); err == nil {
		t.Fatalf("expected error for URL without scheme")
	}
}

func TestRenderHTMLIncludesNotice(t *testing.T) {
	sess, err := resumeform.NewSession(&testsupport.StubService{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ctx := context.Background()

	if _, err := resumeform.RenderHTML(ctx, sess, resumeform.RenderOptions{}); !errors.Is(err, builder.ErrNoForm) {
		t.Fatalf("expected ErrNoForm before a type is selected, got %v", err)
	}

	if err := sess.SelectType(resumeform.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := sess.Submit(ctx); err == nil {
		t.Fatalf("expected invalid form to be refused")
	}

	out, err := resumeform.RenderHTML(ctx, sess, resumeform.RenderOptions{Action: "/generate"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		"Please fix the errors before generating your resume",
		`action="/generate"`,
		`name="personalInfo.fullName"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered form missing %q", want)
		}
	}
}

func TestRenderPreview(t *testing.T) {
	out, err := resumeform.RenderPreview(context.Background(), resumeform.Document{})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(string(out), "Untitled Resume") {
		t.Fatalf("expected fallback title")
	}
}

func TestSessionPathResolvesItemIDs(t *testing.T) {
	sess, err := resumeform.NewSession(&testsupport.StubService{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok := sess.Path("education.0.degree"); ok {
		t.Fatalf("expected no path before a type is selected")
	}
	if err := sess.SelectType(resumeform.TypeFresher); err != nil {
		t.Fatalf("select: %v", err)
	}

	path, ok := sess.Path("education.0.degree")
	if !ok {
		t.Fatalf("expected item id to resolve")
	}
	if path.Field != "education" || len(path.Hops) != 1 || path.Hops[0].Index != 0 || path.Hops[0].Key != "degree" {
		t.Fatalf("unexpected path %+v", path)
	}
	if err := sess.SetScalar(path, "Mathematics"); err != nil {
		t.Fatalf("set item field: %v", err)
	}
	if got := sess.Widgets(); len(got) == 0 {
		t.Fatalf("expected widgets")
	}
	if _, bad := sess.Errors()["education.0.degree"]; bad {
		t.Fatalf("expected degree error cleared after setting it")
	}

	if top := resumeform.FieldPath("personalInfo.fullName"); len(top.Hops) != 0 || top.Field != "personalInfo.fullName" {
		t.Fatalf("unexpected top-level path %+v", top)
	}
	if _, ok := sess.Path("education.0.nope"); ok {
		t.Fatalf("expected unknown sub-key to be refused")
	}
}
