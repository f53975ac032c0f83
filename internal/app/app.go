// Package app assembles the dashboard server: configuration, logging,
// telemetry, services, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cohortpulse/internal/auth"
	"cohortpulse/internal/config"
	"cohortpulse/internal/dataset"
	"cohortpulse/internal/exporter"
	"cohortpulse/internal/infrastructure"
	"cohortpulse/internal/services"
	"cohortpulse/internal/store"
	transporthttp "cohortpulse/internal/transport/http"
)

// Application owns the server's lifecycle.
type Application struct {
	cfg    *config.Config
	logger *slog.Logger
	otel   *infrastructure.OTelProviders
	server *http.Server
}

// New loads configuration and wires every layer together.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig wires the application over an explicit configuration,
// used by tests and the report tool.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("app: init logging: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("app: init telemetry: %w", err)
	}
	requestMetrics, err := infrastructure.NewRequestMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("app: init metrics: %w", err)
	}

	var remote dataset.RemoteReader
	if cfg.Store.Enabled && cfg.Store.Endpoint != "" {
		remote = store.NewClient(cfg.Store, logger)
	} else {
		logger.Info("remote store disabled, serving sample data only")
	}

	loader := dataset.NewLoader(remote, cfg.Cache, logger)
	dataService := services.NewDataService(loader, logger)
	analysisService := services.NewAnalysisService(dataService, requestMetrics, logger)
	authService := auth.NewService(cfg.Auth, logger)
	renderer := exporter.NewChartRenderer(cfg.Store.Timeout)

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		Data:      dataService,
		Analysis:  analysisService,
		Auth:      authService,
		Renderer:  renderer,
		Metrics:   requestMetrics,
		Prom:      otelProviders.PrometheusHTTP,
		Version:   infrastructure.ServiceVersion,
		RateLimit: cfg.Server.RateLimitRPS,
		Logger:    logger,
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		otel:   otelProviders,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains connections within the
// configured shutdown timeout.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening",
			slog.String("addr", a.server.Addr),
			slog.Bool("auth_enabled", a.cfg.Auth.Enabled))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("app: serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("app: drain server: %w", err))
	}
	if err := a.otel.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("app: stop telemetry: %w", err))
	}
	infrastructure.CloseLogFile()
	return errors.Join(errs...)
}
