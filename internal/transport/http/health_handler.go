package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"cohortpulse/internal/services"
)

// HealthHandler serves liveness and version endpoints.
type HealthHandler struct {
	data    *services.DataService
	version string
	started time.Time
	logger  *slog.Logger
}

func NewHealthHandler(data *services.DataService, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		data:    data,
		version: version,
		started: time.Now(),
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Health reports service status plus the data source's reachability.
// The service is healthy even when the remote store is down, because
// sample data keeps every workflow serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "healthy",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"source":  h.data.SourceStatus(r.Context()),
		"version": h.version,
	})
}

// Version reports the build version alone.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"version": h.version})
}
