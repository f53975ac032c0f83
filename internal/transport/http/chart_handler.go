package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cohortpulse/internal/chart"
	"cohortpulse/internal/services"
)

// ChartHandler builds figures and their HTML rendition.
type ChartHandler struct {
	analysis *services.AnalysisService
	logger   *slog.Logger
}

func NewChartHandler(analysis *services.AnalysisService, logger *slog.Logger) *ChartHandler {
	return &ChartHandler{
		analysis: analysis,
		logger:   logger.With(slog.String("component", "chart_handler")),
	}
}

// Routes returns the chart routes.
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.BuildFigure)
	r.Post("/html", h.BuildHTML)
	return r
}

// BuildFigure returns the figure as JSON for the dashboard front end.
func (h *ChartHandler) BuildFigure(w http.ResponseWriter, r *http.Request) {
	var req services.ChartBuildRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	fig, err := h.analysis.BuildChart(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, fig)
}

// BuildHTML returns the figure as a standalone HTML document.
func (h *ChartHandler) BuildHTML(w http.ResponseWriter, r *http.Request) {
	var req services.ChartBuildRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	fig, err := h.analysis.BuildChart(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.WriteHTML(w, fig); err != nil {
		h.logger.ErrorContext(r.Context(), "chart html render failed",
			slog.String("error", err.Error()))
	}
}
