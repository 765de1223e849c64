package server

import (
	"net/http"
	"time"
)

// HealthPath is the liveness route.
const HealthPath = "/health"

// HealthHandler reports liveness for GET /health.
//
// The status is "degraded" when no tracker is configured; the response code stays 200.
type HealthHandler struct {
	tracker string
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. tracker names the configured tracker, or is empty when none is set up.
func NewHealthHandler(tracker string) *HealthHandler {
	return &HealthHandler{tracker: tracker, started: time.Now(), now: time.Now}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.tracker == "" {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"tracker":  h.tracker,
		"uptime_s": h.now().Sub(h.started).Seconds(),
	})
}
