package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortpulse/internal/config"
	"cohortpulse/internal/dataset"
	"cohortpulse/pkg/contracts/domain"
)

// newSampleServices builds the service stack in sample-only mode, so
// everything below the loader is deterministic synthetic data.
func newSampleServices() (*DataService, *AnalysisService) {
	loader := dataset.NewLoader(nil, config.CacheConfig{TTL: time.Hour, MaxSize: 64}, nil)
	data := NewDataService(loader, nil)
	return data, NewAnalysisService(data, nil, nil)
}

func ninetyDays() domain.DateRange {
	return domain.DateRange{
		Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 8, 29, 0, 0, 0, 0, time.UTC),
	}
}

func TestQuickAnalysisTwoCohortScenario(t *testing.T) {
	_, analysis := newSampleServices()

	result, err := analysis.QuickAnalysis(context.Background(), AnalysisRequest{
		ParticipantIDs: []string{"BKQ3HJ", "BRT57L"},
		Metrics:        []string{"minutesAsleep", "steps", "heart_rate"},
		DateRange:      ninetyDays(),
	})
	require.NoError(t, err)

	assert.Equal(t, dataset.OutcomeSample, result.Outcome)
	assert.Greater(t, result.DaysLoaded, 150, "two participants over ninety days")

	require.NotEmpty(t, result.Comparison.Metrics)
	var sleep *domain.MetricComparison
	for i := range result.Comparison.Metrics {
		if result.Comparison.Metrics[i].Metric == "minutesAsleep" {
			sleep = &result.Comparison.Metrics[i]
		}
	}
	require.NotNil(t, sleep)
	assert.Less(t, sleep.ClinicalMean, sleep.ControlMean,
		"synthetic clinical cohort sleeps less than the control")
	assert.True(t, sleep.Significant, "ninety days of separated distributions should test significant")

	require.Len(t, result.ParticipantReports, 2)
	assert.Equal(t, "BKQ3HJ", result.ParticipantReports[0].ParticipantID)
	assert.NotEmpty(t, result.Suggestions)
	assert.NotNil(t, result.Anomalies)
}

func TestQuickAnalysisUnknownMetric(t *testing.T) {
	_, analysis := newSampleServices()
	_, err := analysis.QuickAnalysis(context.Background(), AnalysisRequest{
		Metrics: []string{"bloodPressure"},
	})
	assert.Error(t, err)
}

func TestQuickAnalysisUnknownParticipant(t *testing.T) {
	_, analysis := newSampleServices()
	_, err := analysis.QuickAnalysis(context.Background(), AnalysisRequest{
		ParticipantIDs: []string{"NOBODY"},
	})
	assert.Error(t, err)
}

func TestCompareDefaultsToAllMetrics(t *testing.T) {
	_, analysis := newSampleServices()

	result, err := analysis.Compare(context.Background(), AnalysisRequest{
		ParticipantIDs: []string{"BKQ3HJ", "BRT57L"},
		DateRange:      ninetyDays(),
	})
	require.NoError(t, err)
	assert.Equal(t, len(config.AvailableMetrics), result.Summary.TotalMetrics,
		"sample data carries every recognized metric")
}

func TestCorrelate(t *testing.T) {
	_, analysis := newSampleServices()

	result, err := analysis.Correlate(context.Background(), CorrelationRequest{
		ParticipantIDs: []string{"BKQ3HJ"},
		MetricX:        "steps",
		MetricY:        "distance",
		DateRange:      ninetyDays(),
	})
	require.NoError(t, err)
	assert.Equal(t, "steps", result.MetricX)
	assert.GreaterOrEqual(t, result.N, 80)
	assert.NotEmpty(t, result.Interpretation)
}

func TestCorrelateRejectsUnknownMetric(t *testing.T) {
	_, analysis := newSampleServices()
	_, err := analysis.Correlate(context.Background(), CorrelationRequest{
		MetricX: "steps", MetricY: "nope",
	})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	_, analysis := newSampleServices()

	summaries, err := analysis.Summarize(context.Background(), "BKQ3HJ",
		[]string{"minutesAsleep", "spo2"}, ninetyDays())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "minutesAsleep", summaries[0].Metric)
	assert.Greater(t, summaries[0].Count, 0)
	assert.GreaterOrEqual(t, summaries[0].Min, 180.0)
	assert.LessOrEqual(t, summaries[0].Max, 600.0)
}

func TestBuildChart(t *testing.T) {
	_, analysis := newSampleServices()

	fig, err := analysis.BuildChart(context.Background(), ChartBuildRequest{
		ParticipantIDs: []string{"BKQ3HJ", "BRT57L"},
		DateRange:      ninetyDays(),
		Chart: domain.ChartRequest{
			Kind: domain.ChartLine, X: "date", Y: "steps",
		},
	})
	require.NoError(t, err)
	assert.False(t, fig.IsError())
	assert.Len(t, fig.Traces, 2)
}

func TestBuildChartHistogramDateGuard(t *testing.T) {
	_, analysis := newSampleServices()

	fig, err := analysis.BuildChart(context.Background(), ChartBuildRequest{
		ParticipantIDs: []string{"BKQ3HJ"},
		DateRange:      ninetyDays(),
		Chart: domain.ChartRequest{
			Kind: domain.ChartHistogram, X: "date",
		},
	})
	require.NoError(t, err, "chart failures surface inside the figure, not as errors")
	assert.True(t, fig.IsError())
	assert.Contains(t, fig.Message, "requires a numeric metric")
}

func TestDataServiceSummaryAndStatus(t *testing.T) {
	data, _ := newSampleServices()

	summary, err := data.Summary(context.Background(), "BKQ3HJ", ninetyDays())
	require.NoError(t, err)
	assert.Equal(t, domain.CohortClinical, summary.Cohort)
	assert.Equal(t, 90, summary.Days)
	assert.Equal(t, domain.SourceSample, summary.Source)

	_, err = data.Summary(context.Background(), "NOBODY", ninetyDays())
	assert.Error(t, err)

	status := data.SourceStatus(context.Background())
	assert.False(t, status.RemoteConfigured)
	assert.True(t, status.FallbackActive)
}
