// Package middleware provides HTTP middleware for the back-office API.
//
// # Available Middleware
//
//   - RequestID: assigns or propagates X-Request-ID
//   - Logger: one structured log line per request
//   - Recovery: turns panics into a 500 problem document
//   - CORS: origin allow-list and preflight handling
//   - Compress: gzip for clients that accept it
//   - RateLimit: per-client token bucket with X-RateLimit-* headers
//   - Idempotency: replays POST/PUT/PATCH responses for a repeated Idempotency-Key
//   - Metrics.Middleware: Prometheus request counters and latency histograms
//
// Middleware are composed with Chain, outermost first:
//
//	handler := middleware.Chain(mux,
//		middleware.RequestID,
//		middleware.Logger,
//		middleware.Recovery,
//	)
//
// # Client identity
//
// There is no authentication, so rate limits and idempotency keys are
// scoped to ClientKey: X-Real-IP, then the first X-Forwarded-For hop,
// then the socket address.
package middleware
