package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "cohortpulse/internal/errors"
	"cohortpulse/internal/exporter"
	"cohortpulse/internal/services"
	"cohortpulse/pkg/contracts/domain"
)

// ExportRequest scopes a download. Chart is only consulted for the
// image formats, so its fields are not validated here; an empty chart
// surfaces as an in-figure message.
type ExportRequest struct {
	ParticipantIDs []string            `json:"participant_ids"`
	DateRange      domain.DateRange    `json:"date_range"`
	Title          string              `json:"title"`
	Chart          domain.ChartRequest `json:"chart" validate:"-"`
}

// ExportHandler streams CSV, Excel, PNG, and PDF downloads.
type ExportHandler struct {
	data     *services.DataService
	analysis *services.AnalysisService
	renderer *exporter.ChartRenderer
	logger   *slog.Logger
}

func NewExportHandler(data *services.DataService, analysis *services.AnalysisService, renderer *exporter.ChartRenderer, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		data:     data,
		analysis: analysis,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "export_handler")),
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/csv", h.ExportCSV)
	r.Post("/xlsx", h.ExportExcel)
	r.Post("/png", h.ExportPNG)
	r.Post("/pdf", h.ExportPDF)
	return r
}

func (h *ExportHandler) loadRecords(r *http.Request, req ExportRequest) ([]domain.DailyRecord, error) {
	records, _, err := h.data.LoadMany(r.Context(), req.ParticipantIDs, req.DateRange)
	return records, err
}

func (h *ExportHandler) sendFile(w http.ResponseWriter, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(body)
}

// ExportCSV streams the merged records as CSV.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	records, err := h.loadRecords(r, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteCSV(&buf, records); err != nil {
		respondError(w, r, apierrors.ExportError("csv", err))
		return
	}
	h.sendFile(w, exporter.Filename(req.Title, "csv", req.ParticipantIDs), "text/csv", buf.Bytes())
}

// ExportExcel streams the merged records as a workbook.
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	records, err := h.loadRecords(r, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteExcel(&buf, records); err != nil {
		respondError(w, r, apierrors.ExportError("xlsx", err))
		return
	}
	h.sendFile(w, exporter.Filename(req.Title, "xlsx", req.ParticipantIDs),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportPNG renders the requested chart to a PNG image.
func (h *ExportHandler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	h.exportImage(w, r, "png", "image/png")
}

// ExportPDF renders the requested chart to a PDF document.
func (h *ExportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.exportImage(w, r, "pdf", "application/pdf")
}

func (h *ExportHandler) exportImage(w http.ResponseWriter, r *http.Request, format, contentType string) {
	if h.renderer == nil {
		respondError(w, r, apierrors.ErrExportFailed)
		return
	}
	var req ExportRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	fig, err := h.analysis.BuildChart(r.Context(), services.ChartBuildRequest{
		ParticipantIDs: req.ParticipantIDs,
		DateRange:      req.DateRange,
		Chart:          req.Chart,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	var body []byte
	if format == "pdf" {
		body, err = h.renderer.RenderPDF(r.Context(), fig)
	} else {
		body, err = h.renderer.RenderPNG(r.Context(), fig)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "chart render failed",
			slog.String("format", format), slog.String("error", err.Error()))
		respondError(w, r, apierrors.ExportError(format, err))
		return
	}
	h.sendFile(w, exporter.Filename(req.Title, format, req.ParticipantIDs), contentType, body)
}
