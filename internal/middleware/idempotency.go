package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"
)

const (
	// IdempotencyKeyHeader carries the client-chosen key of a create or update
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader is set on responses served from the store
	ReplayedHeader = "X-Idempotency-Replayed"
)

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long a stored response is replayed (default 24h)
	Cleanup time.Duration // Sweep interval (default 1h)
}

// IdempotencyStore remembers the responses to keyed create and update
// requests so a retried form submission does not insert a second record.
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*storedResponse
	ttl      time.Duration
	now      func() time.Time
	stopOnce sync.Once
	stop     chan struct{}
}

type storedResponse struct {
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	done      chan struct{} // closed once the first request finishes
}

func (e *storedResponse) pending() bool {
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// NewIdempotencyStore creates a store and starts its expiry sweep
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = time.Hour
	}

	s := &IdempotencyStore{
		entries: make(map[string]*storedResponse),
		ttl:     cfg.TTL,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go s.sweepLoop(cfg.Cleanup)
	return s
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Len returns the number of stored or in-flight responses
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *IdempotencyStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *IdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !e.pending() && e.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// begin returns the entry to replay, or claims key for the caller. A
// claimed entry must be completed with finish.
func (s *IdempotencyStore) begin(key string) (entry *storedResponse, claimed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && (e.pending() || e.expiresAt.After(s.now())) {
		return e, false
	}
	e := &storedResponse{done: make(chan struct{})}
	s.entries[key] = e
	return e, true
}

// finish records the outcome of a claimed entry and wakes waiters.
// Server errors are forgotten so the retry runs again.
func (s *IdempotencyStore) finish(key string, e *storedResponse, rec *recordingWriter, headers http.Header) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.status = rec.status
	e.headers = headers
	e.body = rec.body.Bytes()
	e.expiresAt = s.now().Add(s.ttl)
	if rec.status >= http.StatusInternalServerError {
		delete(s.entries, key)
	}
	close(e.done)
}

// encodingHeaders describe how one response travelled, not the record it
// carries. Compress sets them while the body is written.
var encodingHeaders = []string{"Content-Encoding", "Content-Length"}

// handlerHeaders returns what the handler added on top of the headers outer
// middleware had already set, so a replay does not repeat X-Request-ID or
// Vary, nor claim a gzip encoding the replayed client never asked for.
func handlerHeaders(before, after http.Header) http.Header {
	out := make(http.Header)
	for k, v := range after {
		prev := before[k]
		switch {
		case len(prev) == 0:
			out[k] = slices.Clone(v)
		case len(v) > len(prev) && slices.Equal(prev, v[:len(prev)]):
			out[k] = slices.Clone(v[len(prev):])
		case !slices.Equal(prev, v):
			out[k] = slices.Clone(v)
		}
	}
	for _, k := range encodingHeaders {
		out.Del(k)
	}
	return out
}

// fingerprint scopes a key to the caller and the exact request it was sent with
func fingerprint(client, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	for _, part := range []string{client, idempotencyKey, method, path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// recordingWriter passes the response through while keeping a copy
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (e *storedResponse) replay(w http.ResponseWriter) {
	for k, v := range e.headers {
		for _, val := range v {
			w.Header().Add(k, val)
		}
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(e.status)
	_, _ = w.Write(e.body)
}

// Idempotency returns middleware that replays the stored response when a
// POST, PUT or PATCH is retried with the same Idempotency-Key and body.
// Concurrent retries wait for the first request to finish.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := r.Header.Get(IdempotencyKeyHeader)
			if idempotencyKey == "" || !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			key := fingerprint(ClientKey(r), idempotencyKey, r.Method, r.URL.Path, body)

			for {
				entry, claimed := store.begin(key)
				if claimed {
					before := w.Header().Clone()
					rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
					next.ServeHTTP(rec, r)
					store.finish(key, entry, rec, handlerHeaders(before, w.Header()))
					return
				}

				select {
				case <-entry.done:
				case <-r.Context().Done():
					return
				}
				// A forgotten 5xx leaves nothing to replay; claim it again.
				if entry.status < http.StatusInternalServerError {
					entry.replay(w)
					return
				}
			}
		})
	}
}

func mutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}
