package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/forgo/backoffice/api/internal/model"
)

// ============================================================================
// NewRateLimiter Tests (Configuration)
// ============================================================================

func TestNewRateLimiter_DefaultConfig(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	if rl.rate != 100 {
		t.Errorf("expected default rate 100, got %d", rl.rate)
	}
	if rl.window != time.Minute {
		t.Errorf("expected default window 1m, got %v", rl.window)
	}
	if rl.capacity != 120 {
		t.Errorf("expected capacity rate+burst 120, got %d", rl.capacity)
	}
}

func TestNewRateLimiter_NegativeBurst_MeansNoBurst(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 5, Burst: -1})
	defer rl.Stop()

	if rl.capacity != 5 {
		t.Errorf("expected capacity 5, got %d", rl.capacity)
	}
}

// ============================================================================
// Allow() Tests
// ============================================================================

func TestAllow_ExhaustsCapacityThenDenies(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 2, Window: time.Minute, Burst: 1})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := rl.Allow("client")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if remaining != 2-i {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 2-i, remaining)
		}
	}

	allowed, remaining, reset := rl.Allow("client")
	if allowed {
		t.Error("fourth request should be denied")
	}
	if remaining != 0 {
		t.Errorf("expected remaining 0, got %d", remaining)
	}
	if !reset.After(time.Now()) {
		t.Error("reset time should be in the future when denied")
	}
}

func TestAllow_DeniedRequest_DoesNotConsumeToken(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 1, Window: time.Hour, Burst: -1})
	defer rl.Stop()

	allowed, _, _ := rl.Allow("client")
	if !allowed {
		t.Fatal("first request should be allowed")
	}

	_, _, first := rl.Allow("client")
	_, _, second := rl.Allow("client")
	// A cancelled reservation hands its token back, so the wait stays put.
	if second.Sub(first) > time.Second {
		t.Errorf("denied requests should not push the reset out: %v then %v", first, second)
	}
}

func TestAllow_DifferentKeys_SeparateBuckets(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 1, Window: time.Hour, Burst: -1})
	defer rl.Stop()

	if ok, _, _ := rl.Allow("a"); !ok {
		t.Fatal("client a should be allowed")
	}
	if ok, _, _ := rl.Allow("b"); !ok {
		t.Error("client b should have its own bucket")
	}
	if ok, _, _ := rl.Allow("a"); ok {
		t.Error("client a should be exhausted")
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 100, Window: time.Second, Burst: -1})
	defer rl.Stop()

	for i := 0; i < 100; i++ {
		rl.Allow("client")
	}
	if ok, _, _ := rl.Allow("client"); ok {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(50 * time.Millisecond)

	if ok, _, _ := rl.Allow("client"); !ok {
		t.Error("expected a token to refill after 50ms at 100/s")
	}
}

func TestAllow_ConcurrentAccess_ThreadSafe(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 50, Window: time.Hour, Burst: -1})
	defer rl.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := rl.Allow("shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("expected exactly 50 allowed, got %d", allowed)
	}
}

// ============================================================================
// Cleanup Tests
// ============================================================================

func TestEvictIdle_RemovesStaleClients(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 10, Window: time.Minute})
	defer rl.Stop()

	rl.Allow("stale")
	rl.Allow("fresh")

	rl.mu.Lock()
	rl.clients["stale"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	rl.evictIdle(time.Now().Add(-2 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.clients["stale"]; ok {
		t.Error("stale client should be evicted")
	}
	if _, ok := rl.clients["fresh"]; !ok {
		t.Error("fresh client should be kept")
	}
}

func TestStop_Twice_DoesNotPanic(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	rl.Stop()
	rl.Stop()
}

// ============================================================================
// RateLimit Middleware Tests
// ============================================================================

func TestRateLimitMiddleware_AllowedRequest_SetsHeaders(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 100, Window: time.Minute, Burst: 20})
	defer rl.Stop()

	handler := &captureHandler{}
	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rr := httptest.NewRecorder()

	RateLimit(rl)(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if !handler.called {
		t.Error("handler should have been called")
	}
	if rr.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("expected X-RateLimit-Limit '100', got %q", rr.Header().Get("X-RateLimit-Limit"))
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "119" {
		t.Errorf("expected X-RateLimit-Remaining '119', got %q", rr.Header().Get("X-RateLimit-Remaining"))
	}
	if _, err := strconv.ParseInt(rr.Header().Get("X-RateLimit-Reset"), 10, 64); err != nil {
		t.Errorf("X-RateLimit-Reset should be a unix timestamp: %v", err)
	}
}

func TestRateLimitMiddleware_DeniedRequest_Returns429Problem(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 2, Window: time.Minute, Burst: 1})
	defer rl.Stop()

	mw := RateLimit(rl)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		mw(&captureHandler{}).ServeHTTP(httptest.NewRecorder(), req)
	}

	handler := &captureHandler{}
	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.RemoteAddr = "192.168.1.1:54321"
	rr := httptest.NewRecorder()
	mw(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
	if handler.called {
		t.Error("handler should not have been called")
	}
	retryAfter, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	if err != nil || retryAfter < 1 {
		t.Errorf("expected Retry-After >= 1, got %q", rr.Header().Get("Retry-After"))
	}

	var pd model.ProblemDetails
	if err := json.NewDecoder(rr.Body).Decode(&pd); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if pd.Code != model.ErrCodeRateLimited {
		t.Errorf("expected code %d, got %d", model.ErrCodeRateLimited, pd.Code)
	}
}

func TestRateLimitMiddleware_ForwardedFor_KeysByClient(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{Rate: 1, Window: time.Hour, Burst: -1})
	defer rl.Stop()

	mw := RateLimit(rl)
	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.RemoteAddr = "10.0.0.1:80"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		mw(&captureHandler{}).ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("203.0.113.1, 10.0.0.1"); code != http.StatusOK {
		t.Errorf("first client: expected 200, got %d", code)
	}
	if code := send("203.0.113.2"); code != http.StatusOK {
		t.Errorf("second client behind the same proxy: expected 200, got %d", code)
	}
	if code := send("203.0.113.1"); code != http.StatusTooManyRequests {
		t.Errorf("first client again: expected 429, got %d", code)
	}
}
