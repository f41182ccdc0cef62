package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports store connectivity.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// GetHealth handles GET /health
func (h *Handler) GetHealth(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.PingContext(pingCtx); err != nil {
			h.logger.Error("health check failed: database unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Message: "unhealthy"})
			return
		}

		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "healthy"})
	}
}
