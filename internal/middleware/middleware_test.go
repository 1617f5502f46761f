package middleware

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
)

// captureHandler records that the request got through
type captureHandler struct {
	called bool
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	w.WriteHeader(http.StatusOK)
}

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
}

func statusHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if body != "" {
			_, _ = w.Write([]byte(body))
		}
	})
}

// ============================================================================
// Chain Tests
// ============================================================================

func TestChain_AppliesInOrder(t *testing.T) {
	t.Parallel()

	tag := func(s string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(s))
				next.ServeHTTP(w, r)
			})
		}
	}

	tests := []struct {
		name string
		mws  []Middleware
		want string
	}{
		{"none", nil, "H"},
		{"one", []Middleware{tag("1")}, "1H"},
		{"outermost first", []Middleware{tag("1"), tag("2"), tag("3")}, "123H"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			Chain(okHandler("H"), tt.mws...).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/customers", nil))
			if rr.Body.String() != tt.want {
				t.Errorf("got %q, want %q", rr.Body.String(), tt.want)
			}
		})
	}
}

// ============================================================================
// RequestID Tests
// ============================================================================

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
	}{
		{"generated when absent", ""},
		{"kept when supplied", "req-from-proxy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var seen string
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rr := httptest.NewRecorder()
			RequestID(h).ServeHTTP(rr, req)

			if seen == "" || rr.Header().Get("X-Request-ID") != seen {
				t.Fatalf("context id %q and header %q should match", seen, rr.Header().Get("X-Request-ID"))
			}
			if tt.incoming != "" && seen != tt.incoming {
				t.Errorf("expected %q, got %q", tt.incoming, seen)
			}
			if tt.incoming == "" && !uuidPattern.MatchString(seen) {
				t.Errorf("generated id %q is not a UUID", seen)
			}
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	t.Parallel()
	if got := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}

// ============================================================================
// Recovery Tests
// ============================================================================

func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("no panic", func(t *testing.T) {
		t.Parallel()
		rr := httptest.NewRecorder()
		Recovery(okHandler("fine")).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/customers", nil))
		if rr.Code != http.StatusOK || rr.Body.String() != "fine" {
			t.Errorf("unexpected response %d %q", rr.Code, rr.Body.String())
		}
	})

	for name, value := range map[string]interface{}{"string": "boom", "nil": nil} {
		t.Run("panic "+name, func(t *testing.T) {
			t.Parallel()
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic(value) })
			rr := httptest.NewRecorder()
			Recovery(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/customers/7", nil))

			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("expected problem content type, got %q", ct)
			}
			var problem struct {
				Status   int    `json:"status"`
				Instance string `json:"instance"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if problem.Status != http.StatusInternalServerError || problem.Instance != "/customers/7" {
				t.Errorf("unexpected problem %+v", problem)
			}
		})
	}
}

// ============================================================================
// CORS Tests
// ============================================================================

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		allowed   []string
		origin    string
		wantAllow string
	}{
		{"listed origin", []string{"https://admin.example.com"}, "https://admin.example.com", "https://admin.example.com"},
		{"unlisted origin", []string{"https://admin.example.com"}, "https://evil.example", ""},
		{"wildcard", []string{"*"}, "http://localhost:5173", "http://localhost:5173"},
		{"no origin", []string{"*"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/customers", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			CORS(tt.allowed)(okHandler("[]")).ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
			if rr.Body.String() != "[]" {
				t.Error("request should reach the handler")
			}
		})
	}
}

func TestCORS_PreflightAllowsFormHeaders(t *testing.T) {
	t.Parallel()

	called := false
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	req := httptest.NewRequest(http.MethodOptions, "/users/3", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rr := httptest.NewRecorder()
	CORS([]string{"https://admin.example.com"})(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rr.Code)
	}
	if called {
		t.Error("preflight should not reach the handler")
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete) {
		t.Error("DELETE must be allowed")
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), IdempotencyKeyHeader) {
		t.Error("Idempotency-Key must be allowed")
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Expose-Headers"), ReplayedHeader) {
		t.Error("replay marker must be exposed")
	}
}

// ============================================================================
// Compress Tests
// ============================================================================

func gunzip(t *testing.T, b *bytes.Buffer) string {
	t.Helper()
	zr, err := gzip.NewReader(b)
	if err != nil {
		t.Fatalf("not gzip: %v", err)
	}
	defer func() { _ = zr.Close() }()
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read gzip: %v", err)
	}
	return string(out)
}

func TestCompress(t *testing.T) {
	t.Parallel()

	page := `{"data":[],"current_page":1,"last_page":1,"total":0}`
	tests := []struct {
		name       string
		accept     string
		encoding   string
		handler    http.Handler
		wantStatus int
		wantGzip   bool
		wantBody   string
	}{
		{"list gzipped", "", "gzip, deflate", okHandler(page), http.StatusOK, true, page},
		{"created keeps status", "", "gzip", statusHandler(http.StatusCreated, `{"id":1}`), http.StatusCreated, true, `{"id":1}`},
		{"client without gzip", "", "", okHandler(page), http.StatusOK, false, page},
		{"event stream untouched", "text/event-stream", "gzip", okHandler("data: x\n\n"), http.StatusOK, false, "data: x\n\n"},
		{"delete 204 has no body", "", "gzip", statusHandler(http.StatusNoContent, ""), http.StatusNoContent, false, ""},
		{"status without body", "", "gzip", statusHandler(http.StatusAccepted, ""), http.StatusAccepted, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/customers", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.encoding != "" {
				req.Header.Set("Accept-Encoding", tt.encoding)
			}
			rr := httptest.NewRecorder()
			Compress(tt.handler).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			gz := rr.Header().Get("Content-Encoding") == "gzip"
			if gz != tt.wantGzip {
				t.Fatalf("gzip = %v, want %v", gz, tt.wantGzip)
			}
			body := rr.Body.String()
			if gz {
				body = gunzip(t, rr.Body)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

// ============================================================================
// responseWriter Tests
// ============================================================================

func TestResponseWriter_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		do   func(rw *responseWriter)
		want int
	}{
		{"default", func(rw *responseWriter) { _, _ = rw.Write([]byte("x")) }, http.StatusOK},
		{"explicit", func(rw *responseWriter) { rw.WriteHeader(http.StatusCreated) }, http.StatusCreated},
		{"first wins", func(rw *responseWriter) {
			_, _ = rw.Write([]byte("x"))
			rw.WriteHeader(http.StatusInternalServerError)
		}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
			tt.do(rw)
			if rw.statusCode != tt.want {
				t.Errorf("status = %d, want %d", rw.statusCode, tt.want)
			}
		})
	}
}

// ============================================================================
// ClientKey Tests
// ============================================================================

func TestClientKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr host", "192.0.2.1:4000", nil, "192.0.2.1"},
		{"ipv6 remote addr", "[2001:db8::1]:4000", nil, "2001:db8::1"},
		{"no port", "192.0.2.1", nil, "192.0.2.1"},
		{"x-real-ip wins", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.7", "X-Forwarded-For": "203.0.113.9"}, "198.51.100.7"},
		{"first forwarded hop", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientKey(req); got != tt.want {
				t.Errorf("ClientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ============================================================================
// RequestLogger Tests
// ============================================================================

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		path      string
		status    int
		wantLevel string
		wantRoute string
	}{
		{"list", http.MethodGet, "/customers?page=2", http.StatusOK, "INFO", "GET /customers"},
		{"validation failure", http.MethodPost, "/users", http.StatusUnprocessableEntity, "WARN", "POST /users"},
		{"server error", http.MethodDelete, "/users/4", http.StatusInternalServerError, "ERROR", "DELETE /users/{id}"},
		{"unknown route", http.MethodGet, "/orders", http.StatusNotFound, "WARN", "unmatched"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mux := http.NewServeMux()
			h := statusHandler(tt.status, "")
			mux.Handle("GET /customers", h)
			mux.Handle("POST /users", h)
			mux.Handle("DELETE /users/{id}", h)

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			rr := httptest.NewRecorder()
			RequestLogger(logger)(mux).ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			var line map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
			}
			if line["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", line["level"], tt.wantLevel)
			}
			if line["route"] != tt.wantRoute {
				t.Errorf("route = %v, want %s", line["route"], tt.wantRoute)
			}
			if line["status"] != float64(tt.status) {
				t.Errorf("status attr = %v", line["status"])
			}
		})
	}
}

func TestLogger_UsesDefault(t *testing.T) {
	t.Parallel()
	rr := httptest.NewRecorder()
	Logger(statusHandler(http.StatusCreated, "created")).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/customers", nil))
	if rr.Code != http.StatusCreated || rr.Body.String() != "created" {
		t.Errorf("unexpected response %d %q", rr.Code, rr.Body.String())
	}
}
