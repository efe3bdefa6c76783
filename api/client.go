// Package api is a thin client for the content backend's REST endpoints.
// Every call is a single request with no retries; failures come back as
// wrapped errors, with backend rejections surfaced as *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the backend root used when none is configured.
const DefaultBaseURL = "http://localhost:3000/v1/api"

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 8 << 20
)

// Auth carries the admin bearer token. It is passed explicitly to the
// services that need it instead of being read from shared state.
type Auth struct {
	Token string
}

func (a Auth) apply(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
}

// Client issues requests against a fixed base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout (default 15s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New creates a Client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Body is a request body: JSON or a multipart Payload.
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct {
	v any
}

// JSON wraps v as an application/json request body.
func JSON(v any) Body {
	return jsonBody{v: v}
}

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// Error is a request the backend answered but rejected: a non-2xx status
// or a body with "success": false.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Message extracts a human-readable message from err, preferring the
// backend's own wording.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

type requestIDKey struct{}

// WithRequestID attaches id to ctx; outgoing requests forward it in
// X-Request-ID. Requests without one get a fresh uuid.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, auth *Auth, out any) error {
	return c.do(ctx, http.MethodGet, path, auth, nil, out)
}

// Post issues a POST.
func (c *Client) Post(ctx context.Context, path string, auth *Auth, body Body, out any) error {
	return c.do(ctx, http.MethodPost, path, auth, body, out)
}

// Put issues a PUT.
func (c *Client) Put(ctx context.Context, path string, auth *Auth, body Body, out any) error {
	return c.do(ctx, http.MethodPut, path, auth, body, out)
}

// Patch issues a PATCH.
func (c *Client) Patch(ctx context.Context, path string, auth *Auth, body Body, out any) error {
	return c.do(ctx, http.MethodPatch, path, auth, body, out)
}

// Delete issues a DELETE. Body may be nil.
func (c *Client) Delete(ctx context.Context, path string, auth *Auth, body Body, out any) error {
	return c.do(ctx, http.MethodDelete, path, auth, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, auth *Auth, body Body, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		r, ct, err := body.encode()
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader, contentType = r, ct
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth != nil {
		auth.apply(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api: read %s %s: %w", method, path, err)
	}
	return decodeResponse(method, path, resp.StatusCode, data, out)
}

// envelope is the wrapper most endpoints use. Some list endpoints return a
// bare JSON array instead.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeResponse(method, path string, status int, data []byte, out any) error {
	data = bytes.TrimSpace(data)
	var env envelope
	isObject := len(data) > 0 && data[0] == '{'
	if isObject {
		// A body that is not an envelope simply leaves env empty.
		_ = json.Unmarshal(data, &env)
	}

	if status < 200 || status > 299 {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" && !isObject {
			msg = strings.TrimSpace(string(data))
		}
		return &Error{Method: method, Path: path, Status: status, Message: msg}
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return &Error{Method: method, Path: path, Status: status, Message: msg}
	}
	if out == nil || len(data) == 0 {
		return nil
	}

	payload := data
	if isObject && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}
