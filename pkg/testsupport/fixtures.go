package testsupport

import (
	"bytes"
	"io"
	"testing"

	"github.com/goliatone/go-resumeform/pkg/catalog"
	"github.com/goliatone/go-resumeform/pkg/model"
)

// MustForm returns the embedded form registered for resumeType. Testing
// helpers fail the test on error to keep setup concise.
func MustForm(t *testing.T, resumeType string) model.Form {
	t.Helper()

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	form, ok := cat.Form(resumeType)
	if !ok {
		t.Fatalf("resume type %q not in default catalog", resumeType)
	}
	return form
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
