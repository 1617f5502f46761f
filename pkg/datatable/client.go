package datatable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// Meta is the page shape reported by a list endpoint
type Meta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
}

// PageResult is one page of a list endpoint
type PageResult[T any] struct {
	Data []T `json:"data"`
	Meta
}

// ValidationError is a 422 response carrying per-field messages
type ValidationError struct {
	Message string
	Errors  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// FieldErrors returns the first message for each field
func (e *ValidationError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for field, msgs := range e.Errors {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}

// APIError is any other non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 response
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// errorBody is the subset of an RFC 9457 problem the client reads
type errorBody struct {
	Title   string              `json:"title"`
	Detail  string              `json:"detail"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Client talks to the back-office API
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	idempotency bool
	newKey      func() string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithIdempotencyKeys sends a fresh Idempotency-Key header on every
// create and update
func WithIdempotencyKeys() Option {
	return func(c *Client) {
		c.idempotency = true
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		newKey:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolve(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends a request and decodes a 2xx JSON body into out (when non-nil)
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	target := c.resolve(path, q)
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		if c.idempotency {
			req.Header.Set("Idempotency-Key", c.newKey())
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, target, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &body)

	message := body.Message
	if message == "" {
		message = body.Detail
	}
	if message == "" {
		message = body.Title
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return &ValidationError{Message: message, Errors: body.Errors}
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}

// Resource is the REST surface of one entity collection
type Resource[T any] struct {
	client   *Client
	endpoint string
}

// NewResource binds a collection endpoint such as "/customers"
func NewResource[T any](c *Client, endpoint string) *Resource[T] {
	return &Resource[T]{client: c, endpoint: "/" + strings.Trim(endpoint, "/")}
}

// Endpoint returns the collection path
func (r *Resource[T]) Endpoint() string {
	return r.endpoint
}

func (r *Resource[T]) recordPath(id int64) string {
	return r.endpoint + "/" + strconv.FormatInt(id, 10)
}

// List fetches one page
func (r *Resource[T]) List(ctx context.Context, q url.Values) (*PageResult[T], error) {
	var page PageResult[T]
	if err := r.client.do(ctx, http.MethodGet, r.endpoint, q, nil, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return &page, nil
}

// Get fetches one record
func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var rec T
	if err := r.client.do(ctx, http.MethodGet, r.recordPath(id), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create posts body to the collection and returns the created record
func (r *Resource[T]) Create(ctx context.Context, body interface{}) (*T, error) {
	var rec T
	if err := r.client.do(ctx, http.MethodPost, r.endpoint, nil, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update replaces record id with body and returns the updated record
func (r *Resource[T]) Update(ctx context.Context, id int64, body interface{}) (*T, error) {
	var rec T
	if err := r.client.do(ctx, http.MethodPut, r.recordPath(id), nil, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes record id
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.do(ctx, http.MethodDelete, r.recordPath(id), nil, nil, nil)
}
