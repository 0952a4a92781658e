package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goliatone/go-resumeform/pkg/resume"
	"github.com/goliatone/go-resumeform/pkg/service"
)

const (
	MessageFetchFailed    = "Failed to fetch resumes"
	MessageDeleteFailed   = "Failed to delete resume"
	MessageDownloadFailed = "Failed to download PDF"
	MessageNoArtifact     = "No backend PDF available. Please generate your resume first."
)

var ErrNoArtifact = errors.New("builder: no rendered artifact available")

// NoticeError pairs an error with the message shown to the user.
type NoticeError struct {
	Notice string
	Err    error
}

func (e *NoticeError) Error() string {
	if e.Err == nil {
		return "builder: " + e.Notice
	}
	return "builder: " + e.Notice + ": " + e.Err.Error()
}

func (e *NoticeError) Unwrap() error { return e.Err }

func notice(msg string, err error) error {
	return &NoticeError{Notice: msg, Err: err}
}

// Dashboard lists, deletes and downloads saved documents.
type Dashboard struct {
	svc    service.Service
	logger *slog.Logger
}

// NewDashboard returns a Dashboard backed by svc.
func NewDashboard(svc service.Service, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dashboard{svc: svc, logger: logger}
}

// List returns the saved documents of the current user.
func (d *Dashboard) List(ctx context.Context) ([]resume.Document, error) {
	env, err := d.svc.ListResumes(ctx)
	if err != nil {
		return nil, notice(MessageFetchFailed, err)
	}
	if !env.Success {
		return nil, notice(firstNonEmpty(env.Message, MessageFetchFailed), nil)
	}
	if env.Data == nil {
		return []resume.Document{}, nil
	}
	return env.Data, nil
}

// Get fetches the document id.
func (d *Dashboard) Get(ctx context.Context, id string) (resume.Document, error) {
	env, err := d.svc.GetResume(ctx, id)
	if err != nil {
		return resume.Document{}, notice(MessageLoadFailed, err)
	}
	if !env.Success || env.Data == nil {
		return resume.Document{}, notice(firstNonEmpty(env.Message, MessageLoadFailed), ErrLoadFailed)
	}
	doc, err := resume.FromMap(env.Data)
	if err != nil {
		return resume.Document{}, notice(MessageLoadFailed, err)
	}
	return doc, nil
}

// Delete removes the document id.
func (d *Dashboard) Delete(ctx context.Context, id string) error {
	env, err := d.svc.Delete(ctx, id)
	if err != nil {
		return notice(MessageDeleteFailed, err)
	}
	if !env.Success {
		return notice(firstNonEmpty(env.Message, MessageDeleteFailed), nil)
	}
	d.logger.Info("resume deleted", "id", id)
	return nil
}

// Download saves the rendered artifact of doc into dir under
// doc.ArtifactFilename() and returns the written path.
func (d *Dashboard) Download(ctx context.Context, doc resume.Document, dir string) (string, error) {
	return DownloadArtifact(ctx, d.svc, doc, dir)
}

// DownloadArtifact fetches doc's artifact through svc into dir. A partial
// file is removed when the transfer fails.
func DownloadArtifact(ctx context.Context, svc service.Service, doc resume.Document, dir string) (string, error) {
	if !doc.HasArtifact() {
		return "", notice(MessageNoArtifact, ErrNoArtifact)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", notice(MessageDownloadFailed, err)
	}
	target := filepath.Join(dir, doc.ArtifactFilename())
	file, err := os.Create(target)
	if err != nil {
		return "", notice(MessageDownloadFailed, err)
	}
	if _, err := svc.Download(ctx, doc.PDFURL, file); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", notice(MessageDownloadFailed, err)
	}
	if err := file.Close(); err != nil {
		return "", notice(MessageDownloadFailed, fmt.Errorf("close %s: %w", target, err))
	}
	return target, nil
}

// DownloadResult saves the artifact of the last successful submission.
func (s *Session) DownloadResult(ctx context.Context, dir string) (string, error) {
	result := s.Result()
	if result == nil {
		return "", notice(MessageNoArtifact, ErrNoArtifact)
	}
	return DownloadArtifact(ctx, s.svc, result.Document, dir)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
