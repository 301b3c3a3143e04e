// internal/infrastructure/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/casemandu/storefront/internal/config"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// maxBodySize caps how much of a backend response is read
const maxBodySize = 10 << 20

// BackoffFactory builds a fresh backoff for each request
type BackoffFactory func() retry.Backoff

// minBackoff stands in for a non-positive base delay
const minBackoff = time.Millisecond

// DefaultBackoff is the 503 schedule: 3s, 6s, 12s, 15s, 15s
func DefaultBackoff(attempts int, base, max time.Duration) BackoffFactory {
	if base <= 0 {
		base = minBackoff
	}
	if max < base {
		max = base
	}
	if attempts < 0 {
		attempts = 0
	}
	return func() retry.Backoff {
		b := retry.NewExponential(base)
		b = retry.WithCappedDuration(max, b)
		return retry.WithMaxRetries(uint64(attempts), b)
	}
}

// Client talks to the commerce backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	backoff    BackoffFactory
	logger     *logrus.Entry
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff replaces the 503 retry schedule
func WithBackoff(factory BackoffFactory) Option {
	return func(c *Client) { c.backoff = factory }
}

// NewClient creates a backend client from configuration
func NewClient(cfg *config.Config, logger *logrus.Entry, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Backend.Timeout,
		},
		backoff: DefaultBackoff(cfg.Backend.RetryAttempts, cfg.Backend.RetryBaseDelay, cfg.Backend.RetryMaxDelay),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET, retrying 503 responses. A 304 is returned as success
// with whatever body came back, possibly none.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.url(path, query)

	var body []byte
	attempt := 0
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		req.Header.Set("Pragma", "no-cache")
		req.Header.Set("Expires", "0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request to %s failed: %w", path, err)
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return fmt.Errorf("failed to read response from %s: %w", path, err)
		}

		switch {
		case resp.StatusCode == http.StatusNotModified:
			body = payload
			return nil
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body = payload
			return nil
		case resp.StatusCode == http.StatusServiceUnavailable:
			c.logger.WithFields(logrus.Fields{
				"path":    path,
				"attempt": attempt,
			}).Warn("Backend unavailable, retrying")
			return retry.RetryableError(&StatusError{StatusCode: resp.StatusCode, Message: errorMessage(payload)})
		default:
			return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(payload)}
		}
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// GetJSON performs Get and decodes a non-empty body into dest. It reports
// whether anything was decoded.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, dest any) (bool, error) {
	body, err := c.Get(ctx, path, query)
	if err != nil {
		return false, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return false, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return true, nil
}

// File is an upload part of a multipart form
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// MultipartForm is the body of a multipart POST. Fields keep insertion order.
type MultipartForm struct {
	fields [][2]string
	files  []File
}

// Set appends a text field
func (f *MultipartForm) Set(name, value string) {
	f.fields = append(f.fields, [2]string{name, value})
}

// SetJSON appends a field holding the JSON encoding of v
func (f *MultipartForm) SetJSON(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	f.Set(name, string(raw))
	return nil
}

// AddFile appends a file part
func (f *MultipartForm) AddFile(file File) {
	f.files = append(f.files, file)
}

// Fields returns the text fields in insertion order
func (f *MultipartForm) Fields() [][2]string {
	return f.fields
}

// PostMultipart posts form to path. Orders are never retried.
func (c *Client) PostMultipart(ctx context.Context, path string, form *MultipartForm) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range form.fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", field[0], err)
		}
	}
	for _, file := range form.files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(payload)}
	}

	return payload, nil
}

func (c *Client) url(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}
