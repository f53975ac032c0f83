// Package http wires the REST surface: participant catalog, analysis
// workflows, chart building, exports, and auth.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cohortpulse/internal/auth"
	"cohortpulse/internal/exporter"
	"cohortpulse/internal/infrastructure"
	"cohortpulse/internal/middleware"
	"cohortpulse/internal/services"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Data      *services.DataService
	Analysis  *services.AnalysisService
	Auth      *auth.Service
	Renderer  *exporter.ChartRenderer
	Metrics   *infrastructure.RequestMetrics
	Prom      http.Handler
	Version   string
	RateLimit float64
	Logger    *slog.Logger
}

// NewRouter assembles the full middleware stack and API routes.
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Timeout(60 * time.Second))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, int(cfg.RateLimit)*2, logger)
		r.Use(limiter.Handler)
	}

	if cfg.Prom != nil {
		r.Handle("/metrics", cfg.Prom)
	}

	healthHandler := NewHealthHandler(cfg.Data, cfg.Version, logger)
	authHandler := NewAuthHandler(cfg.Auth, logger)
	participantHandler := NewParticipantHandler(cfg.Data, cfg.Analysis, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// Health and auth stay reachable without a session.
		r.Get("/health", healthHandler.Health)
		r.Get("/version", healthHandler.Version)
		r.Mount("/auth", authHandler.Routes())

		r.Group(func(r chi.Router) {
			if cfg.Auth != nil {
				r.Use(cfg.Auth.Middleware)
			}
			r.Mount("/participants", participantHandler.Routes())
			r.Get("/pairs", participantHandler.GetPairs)
			r.Get("/source", participantHandler.GetSource)
			r.Mount("/analysis", NewAnalysisHandler(cfg.Analysis, logger).Routes())
			r.Mount("/charts", NewChartHandler(cfg.Analysis, logger).Routes())
			r.Mount("/export", NewExportHandler(cfg.Data, cfg.Analysis, cfg.Renderer, logger).Routes())
		})
	})

	return r
}
