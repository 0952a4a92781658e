package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-resumeform/pkg/model"
	"github.com/goliatone/go-resumeform/pkg/resume"
	"github.com/goliatone/go-resumeform/pkg/service"
)

const (
	defaultTimeout  = 60 * time.Second
	resourcePath    = "ai-resumes"
	maxErrorBody    = 64 << 10
	requestIDHeader = "X-Request-ID"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout bounds each request. Zero disables the per-request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger routes request diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the resume service over HTTP. JSON bodies are encoded with
// goccy/go-json; payloads holding files are sent as multipart/form-data with
// the JSON document in a "data" part and one part per file.
type Client struct {
	base    *url.URL
	http    *http.Client
	token   string
	timeout time.Duration
	logger  *slog.Logger
}

var _ service.Service = (*Client)(nil)

// New returns a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("httpclient: base url is required")
	}
	base, err := url.Parse(strings.TrimSuffix(trimmed, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("httpclient: unsupported scheme %q", base.Scheme)
	}

	c := &Client{
		base:    base,
		http:    http.DefaultClient,
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type resumeList struct {
	Resumes []resume.Document `json:"resumes"`
}

// ListResumes fetches the saved documents of the current user. The service
// wraps the list as {"resumes": [...]}; a missing list reads as empty.
func (c *Client) ListResumes(ctx context.Context) (service.Envelope[[]resume.Document], error) {
	var raw service.Envelope[resumeList]
	err := c.doJSON(ctx, http.MethodGet, resourcePath, "", nil, &raw)
	out := service.Envelope[[]resume.Document]{
		Success: raw.Success,
		Data:    raw.Data.Resumes,
		Message: raw.Message,
		Error:   raw.Error,
		Errors:  raw.Errors,
	}
	if out.Data == nil {
		out.Data = []resume.Document{}
	}
	return out, err
}

// GetResume fetches one document by id.
func (c *Client) GetResume(ctx context.Context, id string) (service.Envelope[map[string]any], error) {
	var out service.Envelope[map[string]any]
	err := c.doJSON(ctx, http.MethodGet, resourcePath+"/"+url.PathEscape(id), "", nil, &out)
	return out, err
}

// Generate submits a new generation request.
func (c *Client) Generate(ctx context.Context, req service.Request) (service.Envelope[map[string]any], error) {
	var out service.Envelope[map[string]any]
	err := c.doJSON(ctx, http.MethodPost, resourcePath+"/generate", req.ID, req.Payload, &out)
	return out, err
}

// Edit submits an edit of the document id.
func (c *Client) Edit(ctx context.Context, id string, req service.Request) (service.Envelope[map[string]any], error) {
	var out service.Envelope[map[string]any]
	err := c.doJSON(ctx, http.MethodPut, resourcePath+"/"+url.PathEscape(id), req.ID, req.Payload, &out)
	return out, err
}

// Delete removes the document id.
func (c *Client) Delete(ctx context.Context, id string) (service.Envelope[struct{}], error) {
	var out service.Envelope[struct{}]
	err := c.doJSON(ctx, http.MethodDelete, resourcePath+"/"+url.PathEscape(id), "", nil, &out)
	return out, err
}

// Download streams the artifact at artifactURL into dst. Relative URLs are
// resolved against the service base. The bearer token is only sent when the
// artifact lives on the service origin.
func (c *Client) Download(ctx context.Context, artifactURL string, dst io.Writer) (int64, error) {
	target, err := c.base.Parse(strings.TrimSpace(artifactURL))
	if err != nil || target.String() == "" {
		return 0, fmt.Errorf("httpclient: invalid artifact url %q", artifactURL)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, err
	}
	if c.sameOrigin(target) {
		c.authorize(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("httpclient: download: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, statusError(resp)
	}
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, fmt.Errorf("httpclient: download: %w", err)
	}
	return n, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, requestID string, payload map[string]any, out any) error {
	target, err := c.base.Parse(path)
	if err != nil {
		return fmt.Errorf("httpclient: resolve %s: %w", path, err)
	}

	var (
		body        io.Reader
		contentType string
	)
	if payload != nil {
		body, contentType, err = encodePayload(payload)
		if err != nil {
			return err
		}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	c.authorize(req)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("resume service request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.logger.Debug("resume service request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpclient: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) sameOrigin(target *url.URL) bool {
	return strings.EqualFold(target.Scheme, c.base.Scheme) && strings.EqualFold(target.Host, c.base.Host)
}

func statusError(resp *http.Response) error {
	out := &service.StatusError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return out
	}
	var envelope service.Envelope[json.RawMessage]
	if json.Unmarshal(data, &envelope) == nil {
		out.Message = strings.TrimSpace(envelope.Message)
		out.Err = strings.TrimSpace(envelope.Error)
		out.Errors = envelope.Errors
	}
	return out
}

type filePart struct {
	field string
	file  *model.File
}

func encodePayload(payload map[string]any) (io.Reader, string, error) {
	var files []filePart
	collectFiles("", payload, &files)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("httpclient: encode payload: %w", err)
	}
	if len(files) == 0 {
		return bytes.NewReader(data), "application/json", nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="data"`)
	header.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.file.Name))
		contentType := f.file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// collectFiles finds non-nil file handles, naming each by its dotted path
// with item indices ("existingResume", "projects.0.attachment").
func collectFiles(prefix string, value any, out *[]filePart) {
	switch v := value.(type) {
	case *model.File:
		if v != nil {
			*out = append(*out, filePart{field: prefix, file: v})
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			collectFiles(join(prefix, key), v[key], out)
		}
	case []map[string]any:
		for i, child := range v {
			collectFiles(join(prefix, strconv.Itoa(i)), child, out)
		}
	case []any:
		for i, child := range v {
			collectFiles(join(prefix, strconv.Itoa(i)), child, out)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
