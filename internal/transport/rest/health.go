package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/labtrack/internal/transport"
	"github.com/jmoiron/sqlx"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "Healthy"
	HealthUnhealthy HealthStatus = "Unhealthy"
)

const healthCheckTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	Timestamp  time.Time             `json:"timestamp"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	DurationMs int64          `json:"durationMs"`
}

type HealthHandler struct {
	*transport.BaseHandler
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{BaseHandler: transport.NewBaseHandler(logger), db: db}
}

// Ping only says the process is up.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Health reports readiness including a database round trip.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		Details:    map[string]any{"driver": h.db.DriverName()},
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "health check: database ping failed", "error", err)
		entry.Status = HealthUnhealthy
		entry.Message = "database unreachable"
	}

	resp := HealthResponse{
		Status:     entry.Status,
		Timestamp:  time.Now().UTC(),
		Components: map[string]CheckEntry{"database": entry},
	}

	statusCode := http.StatusOK
	if entry.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, statusCode, resp)
}
