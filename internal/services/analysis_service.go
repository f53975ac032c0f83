package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"cohortpulse/internal/chart"
	"cohortpulse/internal/config"
	"cohortpulse/internal/dataset"
	apierrors "cohortpulse/internal/errors"
	"cohortpulse/internal/infrastructure"
	"cohortpulse/internal/insights"
	"cohortpulse/internal/stats"
	"cohortpulse/pkg/contracts/domain"
)

// AnalysisRequest scopes an analysis run to participants, metrics, and
// an optional date window. Empty participants means the whole catalog;
// empty metrics means every recognized metric.
type AnalysisRequest struct {
	ParticipantIDs []string         `json:"participant_ids"`
	Metrics        []string         `json:"metrics" validate:"omitempty,dive,required"`
	DateRange      domain.DateRange `json:"date_range"`
}

// QuickAnalysisResult bundles everything the dashboard's one-click
// analysis shows.
type QuickAnalysisResult struct {
	Outcome            dataset.Outcome             `json:"outcome"`
	DaysLoaded         int                         `json:"days_loaded"`
	Comparison         domain.ComparisonResult     `json:"comparison"`
	ComparisonReport   insights.ComparisonReport   `json:"comparison_report"`
	ParticipantReports []insights.ParticipantReport `json:"participant_reports"`
	Suggestions        []insights.ChartSuggestion  `json:"suggestions"`
	Anomalies          []insights.Anomaly          `json:"anomalies"`
}

// CorrelationRequest names the two metrics to correlate over the
// participant set.
type CorrelationRequest struct {
	ParticipantIDs []string         `json:"participant_ids"`
	MetricX        string           `json:"metric_x" validate:"required"`
	MetricY        string           `json:"metric_y" validate:"required"`
	DateRange      domain.DateRange `json:"date_range"`
}

// ChartBuildRequest pairs a chart description with the data scope it
// draws from.
type ChartBuildRequest struct {
	ParticipantIDs []string            `json:"participant_ids"`
	DateRange      domain.DateRange    `json:"date_range"`
	Chart          domain.ChartRequest `json:"chart" validate:"required"`
}

// AnalysisService runs the statistical workflows over loaded records.
type AnalysisService struct {
	data    *DataService
	metrics *infrastructure.RequestMetrics
	logger  *slog.Logger
}

// NewAnalysisService wires the analysis workflows. Metrics may be nil
// in tests and one-shot tools.
func NewAnalysisService(data *DataService, metrics *infrastructure.RequestMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		data:    data,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "analysis_service")),
	}
}

func (s *AnalysisService) countRun(ctx context.Context, operation string) {
	if s.metrics != nil {
		s.metrics.Analyses.Add(ctx, 1,
			metric.WithAttributes(attribute.String("operation", operation)))
	}
}

// resolveMetrics validates requested metric names, defaulting to the
// full recognized set.
func resolveMetrics(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return config.AvailableMetrics, nil
	}
	for _, m := range requested {
		if !config.KnownMetric(m) {
			return nil, apierrors.ErrValidation("metrics", "unrecognized metric: "+m)
		}
	}
	return requested, nil
}

// QuickAnalysis loads the participants, compares the cohorts, and
// narrates the results with suggested figures and anomaly flags.
func (s *AnalysisService) QuickAnalysis(ctx context.Context, req AnalysisRequest) (QuickAnalysisResult, error) {
	metrics, err := resolveMetrics(req.Metrics)
	if err != nil {
		return QuickAnalysisResult{}, err
	}
	participants, err := s.data.ResolveMany(ctx, req.ParticipantIDs)
	if err != nil {
		return QuickAnalysisResult{}, err
	}

	records, outcome, err := s.data.LoadMany(ctx, req.ParticipantIDs, req.DateRange)
	if err != nil {
		return QuickAnalysisResult{}, err
	}
	s.countRun(ctx, "quick")

	comparison := stats.CompareCohorts(records, metrics)

	result := QuickAnalysisResult{
		Outcome:            outcome,
		DaysLoaded:         len(records),
		Comparison:         comparison,
		ComparisonReport:   insights.BuildComparisonReport(comparison),
		ParticipantReports: []insights.ParticipantReport{},
		Suggestions:        insights.SuggestCharts(records, metrics),
		Anomalies:          insights.DetectAnomalies(records),
	}
	for _, p := range participants {
		result.ParticipantReports = append(result.ParticipantReports,
			insights.BuildParticipantReport(p.ID, p.Cohort, domain.FilterParticipant(records, p.ID)))
	}
	if result.Anomalies == nil {
		result.Anomalies = []insights.Anomaly{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []insights.ChartSuggestion{}
	}
	return result, nil
}

// Compare runs the two-cohort statistical comparison.
func (s *AnalysisService) Compare(ctx context.Context, req AnalysisRequest) (domain.ComparisonResult, error) {
	metrics, err := resolveMetrics(req.Metrics)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	records, _, err := s.data.LoadMany(ctx, req.ParticipantIDs, req.DateRange)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	s.countRun(ctx, "compare")
	return stats.CompareCohorts(records, metrics), nil
}

// Correlate computes the Pearson relationship between two metrics.
func (s *AnalysisService) Correlate(ctx context.Context, req CorrelationRequest) (domain.CorrelationResult, error) {
	if !config.KnownMetric(req.MetricX) {
		return domain.CorrelationResult{}, apierrors.ErrValidation("metric_x", "unrecognized metric: "+req.MetricX)
	}
	if !config.KnownMetric(req.MetricY) {
		return domain.CorrelationResult{}, apierrors.ErrValidation("metric_y", "unrecognized metric: "+req.MetricY)
	}

	records, _, err := s.data.LoadMany(ctx, req.ParticipantIDs, req.DateRange)
	if err != nil {
		return domain.CorrelationResult{}, err
	}
	s.countRun(ctx, "correlate")

	result, ok := stats.Correlate(records, req.MetricX, req.MetricY)
	if !ok {
		return domain.CorrelationResult{}, apierrors.ErrValidation("metrics",
			"not enough days with both metrics present")
	}
	return result, nil
}

// Summarize computes descriptive statistics per metric for one
// participant.
func (s *AnalysisService) Summarize(ctx context.Context, participantID string, requested []string, rng domain.DateRange) ([]domain.MetricSummary, error) {
	metrics, err := resolveMetrics(requested)
	if err != nil {
		return nil, err
	}
	records, _, err := s.data.Load(ctx, participantID, rng)
	if err != nil {
		return nil, err
	}
	s.countRun(ctx, "summarize")

	summaries := make([]domain.MetricSummary, 0, len(metrics))
	for _, metric := range metrics {
		summaries = append(summaries, stats.Describe(records, metric))
	}
	return summaries, nil
}

// BuildChart loads the requested scope and renders a figure for it.
// Chart failures come back as in-figure messages, not errors.
func (s *AnalysisService) BuildChart(ctx context.Context, req ChartBuildRequest) (domain.Figure, error) {
	records, _, err := s.data.LoadMany(ctx, req.ParticipantIDs, req.DateRange)
	if err != nil {
		return domain.Figure{}, err
	}
	s.countRun(ctx, "chart")
	return chart.Build(records, req.Chart), nil
}
