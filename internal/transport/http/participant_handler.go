package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "cohortpulse/internal/errors"
	"cohortpulse/internal/services"
)

// ParticipantHandler serves the catalog and per-participant views.
type ParticipantHandler struct {
	data     *services.DataService
	analysis *services.AnalysisService
	logger   *slog.Logger
}

func NewParticipantHandler(data *services.DataService, analysis *services.AnalysisService, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		data:     data,
		analysis: analysis,
		logger:   logger.With(slog.String("component", "participant_handler")),
	}
}

// Routes returns the participant routes.
func (h *ParticipantHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetParticipants)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.ParticipantCtx)
		r.Get("/summary", h.GetSummary)
		r.Get("/metrics", h.GetMetrics)
	})
	return r
}

// ParticipantCtx rejects requests whose participant is not in the
// catalog before the sub-handlers run.
func (h *ParticipantHandler) ParticipantCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			respondError(w, r, apierrors.ErrValidation("id", "participant id is required"))
			return
		}
		if _, err := h.data.Resolve(r.Context(), id); err != nil {
			respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetParticipants lists every enrolled participant.
func (h *ParticipantHandler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"participants": h.data.Participants(r.Context()),
	})
}

// GetPairs lists the matched clinical/control pairs.
func (h *ParticipantHandler) GetPairs(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"pairs": h.data.Pairs()})
}

// GetSource reports the remote store's availability.
func (h *ParticipantHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.data.SourceStatus(r.Context()))
}

// GetSummary describes one participant's loaded data.
func (h *ParticipantHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := queryDateRange(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	summary, err := h.data.Summary(r.Context(), chi.URLParam(r, "id"), rng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// GetMetrics returns descriptive statistics per metric for one
// participant. Metrics can be narrowed with repeated ?metric= params.
func (h *ParticipantHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	rng, err := queryDateRange(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	summaries, err := h.analysis.Summarize(r.Context(), chi.URLParam(r, "id"),
		r.URL.Query()["metric"], rng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"metrics": summaries})
}
