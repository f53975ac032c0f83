package insights

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortpulse/pkg/contracts/domain"
)

func series(id string, cohort domain.Cohort, metric string, values ...float64) []domain.DailyRecord {
	out := make([]domain.DailyRecord, len(values))
	for i, v := range values {
		out[i] = domain.DailyRecord{
			ParticipantID: id,
			Cohort:        cohort,
			Date:          time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Metrics:       map[string]float64{metric: v},
		}
	}
	return out
}

func withMetric(records []domain.DailyRecord, metric string, values ...float64) []domain.DailyRecord {
	for i := range records {
		if i < len(values) {
			records[i].Metrics[metric] = values[i]
		}
	}
	return records
}

func TestParticipantReportEmpty(t *testing.T) {
	report := BuildParticipantReport("BKQ3HJ", domain.CohortClinical, nil)
	assert.Contains(t, report.Overview, "No data available")
	assert.Empty(t, report.Sleep)
	assert.False(t, report.ClinicallyRelevant)
}

func TestParticipantReportShortSleeper(t *testing.T) {
	// 5.5 hours a night for a clinical participant.
	recs := series("BKQ3HJ", domain.CohortClinical, "minutesAsleep", 330, 335, 325, 330, 340)

	report := BuildParticipantReport("BKQ3HJ", domain.CohortClinical, recs)
	require.NotEmpty(t, report.Sleep)
	assert.Contains(t, report.Sleep[0], "well below the recommended 7 hours")
	assert.True(t, report.ClinicallyRelevant)
	assert.NotEmpty(t, report.FollowUps)
}

func TestParticipantReportHealthyControl(t *testing.T) {
	recs := series("BRT57L", domain.CohortControl, "minutesAsleep", 490, 500, 495, 505, 498)
	recs = withMetric(recs, "steps", 9000, 9200, 8800, 9500, 9100)
	recs = withMetric(recs, "heart_rate", 64, 66, 65, 63, 67)

	report := BuildParticipantReport("BRT57L", domain.CohortControl, recs)
	assert.False(t, report.ClinicallyRelevant)
	assert.Contains(t, report.Activity[0], "good activity level")
	assert.Contains(t, report.Cardiovascular[0], "good range")
}

func TestParticipantReportCohortSpecificSleepCutoffs(t *testing.T) {
	// 6.8 hours: fine-ish for clinical, below expectation for control.
	clinical := BuildParticipantReport("A", domain.CohortClinical,
		series("A", domain.CohortClinical, "minutesAsleep", 408, 408, 408))
	control := BuildParticipantReport("B", domain.CohortControl,
		series("B", domain.CohortControl, "minutesAsleep", 408, 408, 408))

	assert.Contains(t, clinical.Sleep[0], "slightly below")
	assert.Contains(t, control.Sleep[0], "below the range expected")
	assert.True(t, control.ClinicallyRelevant)
}

func TestParticipantReportElevatedHeartRate(t *testing.T) {
	recs := series("BKQ3HJ", domain.CohortClinical, "heart_rate", 84, 86, 85, 88, 83)
	report := BuildParticipantReport("BKQ3HJ", domain.CohortClinical, recs)

	require.NotEmpty(t, report.Cardiovascular)
	assert.Contains(t, report.Cardiovascular[0], "elevated resting heart rate")
	assert.True(t, report.ClinicallyRelevant)
}

func TestParticipantReportDataQuality(t *testing.T) {
	recs := series("BKQ3HJ", domain.CohortClinical, "minutesAsleep", 420, 430, 425, 415, 435, 420, 428, 433, 419, 424)
	// Steps present on only 4 of 10 days.
	recs = withMetric(recs, "steps", 9000, 9100, 8900, 9050)

	report := BuildParticipantReport("BKQ3HJ", domain.CohortClinical, recs)
	require.NotEmpty(t, report.DataQuality)
	assert.Contains(t, report.DataQuality[0], "Daily Steps")
}

func TestComparisonReportEmpty(t *testing.T) {
	report := BuildComparisonReport(domain.ComparisonResult{})
	assert.Contains(t, report.Headline, "Not enough")
	assert.Empty(t, report.Findings)
}

func TestComparisonReportNarratesSignificance(t *testing.T) {
	pct := -17.5
	result := domain.ComparisonResult{
		Metrics: []domain.MetricComparison{
			{
				Metric: "minutesAsleep", ClinicalMean: 370, ControlMean: 450,
				Difference: -80, PercentDifference: &pct,
				PValue: 0.002, Significant: true, EffectSize: "Large",
			},
			{
				Metric: "efficiency", ClinicalMean: 73, ControlMean: 85,
				Difference: -12, PValue: 0.01, Significant: true, EffectSize: "Medium",
			},
		},
		Summary: domain.ComparisonSummary{TotalMetrics: 2, SignificantCount: 2, PercentSignificant: 100},
	}

	report := BuildComparisonReport(result)
	joined := strings.Join(report.Findings, " ")
	assert.Contains(t, joined, "significantly lower")
	assert.Contains(t, joined, "substantial sleep-efficiency gap")
	assert.Contains(t, report.Summary, "2 of 2")
}
