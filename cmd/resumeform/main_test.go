package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func envFile(t *testing.T, serviceURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	content := "RESUMEFORM_SERVICE_URL=" + serviceURL + "\nRESUMEFORM_LOG_LEVEL=error\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestLintEmbeddedSchemas(t *testing.T) {
	out, err := runCLI(t, "lint", "../../pkg/catalog/schemas")
	if err != nil {
		t.Fatalf("lint: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok (EXPERIENCED, FRESHER)") {
		t.Fatalf("unexpected lint output %q", out)
	}
}

func TestLintReportsBrokenCatalog(t *testing.T) {
	dir := t.TempDir()
	broken := "resumeTypes:\n  BROKEN:\n    fields:\n      - id: skills\n        kind: sparkle\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(broken), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := runCLI(t, "lint", dir, t.TempDir())
	if err == nil {
		t.Fatalf("expected lint failure")
	}
	if !strings.Contains(out, "sparkle") || !strings.Contains(out, "no resume types found") {
		t.Fatalf("unexpected lint output %q", out)
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := runCLI(t, "-env", envFile(t, "http://localhost:5000/api"), "schema", "-type", "EXPERIENCED")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, want := range []string{`"personalInfo"`, `"workExperience"`, `"required"`} {
		if !strings.Contains(out, want) {
			t.Errorf("schema missing %s", want)
		}
	}

	if _, err := runCLI(t, "-env", envFile(t, "http://localhost:5000/api"), "schema", "-type", "INTERN"); err == nil {
		t.Fatalf("expected unknown type error")
	}
}

func TestHTMLCommand(t *testing.T) {
	out, err := runCLI(t, "-env", envFile(t, "http://localhost:5000/api"), "html", "-type", "FRESHER", "-action", "/submit")
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, want := range []string{`action="/submit"`, `name="resumeType" value="FRESHER"`, `name="personalInfo.fullName"`} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %s", want)
		}
	}
}

func TestListAndDeleteCommands(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/ai-resumes":
			_, _ = w.Write([]byte(`{"success":true,"data":{"resumes":[{"_id":"r1","resumeType":"FRESHER","personalInfo":{"fullName":"Ada Lovelace"},"pdfUrl":"/files/r1.pdf"}]}}`))
		case r.Method == http.MethodDelete:
			deleted = strings.TrimPrefix(r.URL.Path, "/api/ai-resumes/")
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	env := envFile(t, srv.URL+"/api")

	out, err := runCLI(t, "-env", env, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "r1") || !strings.Contains(out, "Ada Lovelace") || !strings.Contains(out, "yes") {
		t.Fatalf("unexpected list output %q", out)
	}

	if _, err := runCLI(t, "-env", env, "delete", "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != "r1" {
		t.Fatalf("expected r1 deleted, got %q", deleted)
	}
	if _, err := runCLI(t, "-env", env, "delete"); err == nil {
		t.Fatalf("expected error without id")
	}
}

func TestDownloadCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ai-resumes/r1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"r1","personalInfo":{"fullName":"Ada Lovelace"},"pdfUrl":"/files/r1.pdf"}}`))
		case "/files/r1.pdf":
			_, _ = w.Write([]byte("%PDF-1.4"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, err := runCLI(t, "-env", envFile(t, srv.URL+"/api"), "download", "-dir", dir, "r1")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	target := filepath.Join(dir, "resume-Ada Lovelace.pdf")
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "%PDF-1.4" {
		t.Fatalf("expected artifact at %s: %v", target, err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCLI(t, "-env", envFile(t, "http://localhost:5000/api"), "publish"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if _, err := runCLI(t); err == nil {
		t.Fatalf("expected usage error without a command")
	}
}
