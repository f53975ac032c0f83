package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cohortpulse/internal/services"
)

// AnalysisHandler serves the statistical workflows.
type AnalysisHandler struct {
	analysis *services.AnalysisService
	logger   *slog.Logger
}

func NewAnalysisHandler(analysis *services.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		logger:   logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/quick", h.Quick)
	r.Post("/compare", h.Compare)
	r.Post("/correlate", h.Correlate)
	return r
}

// Quick runs the one-click analysis: comparison, narratives, chart
// suggestions, and anomaly flags in one response.
func (h *AnalysisHandler) Quick(w http.ResponseWriter, r *http.Request) {
	var req services.AnalysisRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := h.analysis.QuickAnalysis(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Compare runs the two-cohort statistical comparison alone.
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req services.AnalysisRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := h.analysis.Compare(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Correlate relates two metrics across the selected participants.
func (h *AnalysisHandler) Correlate(w http.ResponseWriter, r *http.Request) {
	var req services.CorrelationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := h.analysis.Correlate(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
