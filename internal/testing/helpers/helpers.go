package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/gorm"

	"github.com/forgo/backoffice/api/internal/model"
)

// ============================================================================
// HTTP Request Helpers
// ============================================================================

// RequestBuilder helps construct HTTP requests for testing
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    interface{}
	headers map[string]string
}

// NewRequest creates a new request builder
func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{
		t:       t,
		method:  method,
		path:    path,
		headers: make(map[string]string),
	}
}

// WithBody sets the request body. Strings are sent verbatim, anything else
// is JSON encoded.
func (rb *RequestBuilder) WithBody(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

// WithHeader adds a header to the request
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// Build creates the HTTP request
func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var bodyReader io.Reader
	switch b := rb.body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewReader([]byte(b))
	default:
		bodyBytes, err := json.Marshal(b)
		if err != nil {
			rb.t.Fatalf("helpers: failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(rb.method, rb.path, bodyReader)
	if rb.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	return req
}

// Do serves the request through h and returns the recorded response
func (rb *RequestBuilder) Do(h http.Handler) *httptest.ResponseRecorder {
	rb.t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, rb.Build())
	return rr
}

// ============================================================================
// Response Assertion Helpers
// ============================================================================

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.Code, resp.Body.String())
	}
}

// DecodeProblem decodes an RFC 9457 Problem Details body
func DecodeProblem(t *testing.T, resp *httptest.ResponseRecorder) model.ProblemDetails {
	t.Helper()

	var problem model.ProblemDetails
	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v. Body: %s", err, string(bodyBytes))
	}
	return problem
}

// AssertProblemDetails validates an RFC 9457 Problem Details error response
func AssertProblemDetails(t *testing.T, resp *httptest.ResponseRecorder, expectedStatus int, expectedCode model.ErrorCode) {
	t.Helper()

	AssertStatus(t, resp, expectedStatus)
	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem content type, got %q", ct)
	}

	problem := DecodeProblem(t, resp)
	if problem.Status != expectedStatus {
		t.Errorf("expected problem.status %d, got %d", expectedStatus, problem.Status)
	}
	if expectedCode != 0 && problem.Code != expectedCode {
		t.Errorf("expected problem.code %d, got %d", expectedCode, problem.Code)
	}
}

// AssertValidationError checks for a 422 carrying message on field. An
// empty message only checks that the field has an error.
func AssertValidationError(t *testing.T, resp *httptest.ResponseRecorder, field, message string) {
	t.Helper()

	AssertStatus(t, resp, http.StatusUnprocessableEntity)
	problem := DecodeProblem(t, resp)

	msgs, ok := problem.Errors[field]
	if !ok || len(msgs) == 0 {
		t.Errorf("expected validation error on field %q, but not found. Errors: %+v", field, problem.Errors)
		return
	}
	if message != "" && msgs[0] != message {
		t.Errorf("expected %q on field %q, got %q", message, field, msgs[0])
	}
}

// DecodeResponse decodes the response body into the given struct
func DecodeResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, string(bodyBytes))
	}
}

// ============================================================================
// Database Assertion Helpers
// ============================================================================

// AssertRecordExists checks that a row with id exists in m's table
func AssertRecordExists(t *testing.T, db *gorm.DB, m interface{}, id int64) {
	t.Helper()
	if countByID(t, db, m, id) == 0 {
		t.Errorf("expected %T %d to exist", m, id)
	}
}

// AssertRecordNotExists checks that no row with id exists in m's table
func AssertRecordNotExists(t *testing.T, db *gorm.DB, m interface{}, id int64) {
	t.Helper()
	if countByID(t, db, m, id) != 0 {
		t.Errorf("expected %T %d to be absent", m, id)
	}
}

func countByID(t *testing.T, db *gorm.DB, m interface{}, id int64) int64 {
	t.Helper()
	var n int64
	if err := db.Model(m).Where("id = ?", id).Count(&n).Error; err != nil {
		t.Fatalf("helpers: count failed: %v", err)
	}
	return n
}

// ============================================================================
// Pointer Helpers
// ============================================================================

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
