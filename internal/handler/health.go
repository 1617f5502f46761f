package handler

import (
	"context"
	"net/http"
	"time"
)

// PingFunc checks a dependency
type PingFunc func(ctx context.Context) error

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	ping    PingFunc
	driver  string
	started time.Time
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Driver   string `json:"driver"`
	Uptime   string `json:"uptime"`
}

// NewHealthHandler creates a health handler for the given database ping
func NewHealthHandler(ping PingFunc, driver string) *HealthHandler {
	return &HealthHandler{ping: ping, driver: driver, started: time.Now()}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Driver:   h.driver,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}

	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			w.Header().Set("Retry-After", "5")
			WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}
