package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortpulse/pkg/contracts/domain"
)

func records(cohort domain.Cohort, metric string, values ...float64) []domain.DailyRecord {
	out := make([]domain.DailyRecord, len(values))
	for i, v := range values {
		out[i] = domain.DailyRecord{
			ParticipantID: "P",
			Cohort:        cohort,
			Date:          time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Metrics:       map[string]float64{metric: v},
		}
	}
	return out
}

func TestTTestKnownValues(t *testing.T) {
	// Reference values checked against scipy.stats.ttest_ind.
	a := []float64{5.1, 4.9, 5.3, 5.0, 5.2}
	b := []float64{4.2, 4.4, 4.1, 4.3, 4.5}

	stat, p := TTest(a, b)
	assert.InDelta(t, 8.0, stat, 1e-9)
	assert.Less(t, p, 0.001)
	assert.Greater(t, p, 0.0)
}

func TestTTestIdenticalGroups(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	stat, p := TTest(a, a)
	assert.InDelta(t, 0, stat, 1e-12)
	assert.InDelta(t, 1, p, 1e-9)
}

func TestTTestTooFewValues(t *testing.T) {
	stat, p := TTest([]float64{1, 2}, []float64{3, 4, 5})
	assert.True(t, math.IsNaN(stat))
	assert.True(t, math.IsNaN(p))
}

func TestTTestZeroVariance(t *testing.T) {
	stat, _ := TTest([]float64{5, 5, 5}, []float64{5, 5, 5})
	assert.True(t, math.IsNaN(stat), "identical constants have no testable difference")
}

func TestCohensD(t *testing.T) {
	a := []float64{10, 12, 11, 13, 12}
	b := []float64{10, 12, 11, 13, 12}
	assert.InDelta(t, 0, CohensD(a, b), 1e-12)

	higher := []float64{20, 22, 21, 23, 22}
	d := CohensD(higher, b)
	assert.Greater(t, d, 0.0, "sign follows the first group")
	assert.Equal(t, -d, CohensD(b, higher))
}

func TestEffectSizeLabel(t *testing.T) {
	assert.Equal(t, "Negligible", EffectSizeLabel(0.1))
	assert.Equal(t, "Small", EffectSizeLabel(-0.3))
	assert.Equal(t, "Medium", EffectSizeLabel(0.6))
	assert.Equal(t, "Large", EffectSizeLabel(-1.5))
}

func TestCompareMetricPercentDifferenceGuard(t *testing.T) {
	cmp, ok := CompareMetric("delta",
		[]float64{1, 2, 3, 4},
		[]float64{-2, -1, 1, 2})
	require.True(t, ok)
	assert.Nil(t, cmp.PercentDifference, "near-zero control mean suppresses the ratio")

	cmp, ok = CompareMetric("steps",
		[]float64{7000, 7200, 7100, 7300},
		[]float64{9000, 8800, 9100, 8900})
	require.True(t, ok)
	require.NotNil(t, cmp.PercentDifference)
	assert.InDelta(t, (7150.0-8950.0)/8950.0*100, *cmp.PercentDifference, 1e-9)
}

func TestCompareCohortsSkipsSmallGroups(t *testing.T) {
	recs := append(
		records(domain.CohortClinical, "steps", 7000, 7200, 7100, 6900),
		records(domain.CohortControl, "steps", 9000, 8800)...)

	result := CompareCohorts(recs, []string{"steps"})
	assert.Empty(t, result.Metrics, "control group below minimum size is skipped")
	assert.Equal(t, 0, result.Summary.TotalMetrics)
	assert.Equal(t, 0.0, result.Summary.PercentSignificant, "empty run reports zero, never NaN")
}

func TestCompareCohortsSummary(t *testing.T) {
	recs := append(
		records(domain.CohortClinical, "steps", 5000, 5200, 5100, 4900, 5050),
		records(domain.CohortControl, "steps", 9000, 8800, 9100, 8900, 9050)...)
	recs = append(recs, records(domain.CohortClinical, "spo2", 96.8, 97.1, 96.9, 97.0, 96.7)...)
	recs = append(recs, records(domain.CohortControl, "spo2", 97.0, 96.9, 97.1, 96.8, 97.2)...)

	result := CompareCohorts(recs, []string{"steps", "spo2"})
	require.Len(t, result.Metrics, 2)

	assert.True(t, result.Metrics[0].Significant, "widely separated step counts should test significant")
	assert.False(t, result.Metrics[1].Significant)
	assert.Equal(t, 2, result.Summary.TotalMetrics)
	assert.Equal(t, 1, result.Summary.SignificantCount)
	assert.InDelta(t, 50.0, result.Summary.PercentSignificant, 1e-9)
}

func TestCorrelate(t *testing.T) {
	recs := make([]domain.DailyRecord, 10)
	for i := range recs {
		x := float64(i)
		recs[i] = domain.DailyRecord{
			ParticipantID: "P",
			Cohort:        domain.CohortClinical,
			Date:          time.Date(2023, 6, 1+i, 0, 0, 0, 0, time.UTC),
			Metrics:       map[string]float64{"steps": x * 1000, "calories": 1800 + x*90},
		}
	}

	result, ok := Correlate(recs, "steps", "calories")
	require.True(t, ok)
	assert.InDelta(t, 1.0, result.Correlation, 1e-9)
	assert.Equal(t, 10, result.N)
	assert.True(t, result.Significant)
	assert.Equal(t, "Very Strong", result.Interpretation)
}

func TestCorrelateSkipsIncompleteDays(t *testing.T) {
	recs := []domain.DailyRecord{
		{Metrics: map[string]float64{"steps": 7000, "calories": 2200}},
		{Metrics: map[string]float64{"steps": 8000}},
		{Metrics: map[string]float64{"calories": 2100}},
		{Metrics: map[string]float64{"steps": 7500, "calories": 2300}},
	}
	_, ok := Correlate(recs, "steps", "calories")
	assert.False(t, ok, "only two complete pairs is below the minimum")
}

func TestCorrelationLabel(t *testing.T) {
	assert.Equal(t, "Negligible", CorrelationLabel(0.05))
	assert.Equal(t, "Weak", CorrelationLabel(-0.2))
	assert.Equal(t, "Moderate", CorrelationLabel(0.4))
	assert.Equal(t, "Strong", CorrelationLabel(-0.6))
	assert.Equal(t, "Very Strong", CorrelationLabel(0.9))
}

func TestDescribe(t *testing.T) {
	recs := records(domain.CohortClinical, "efficiency", 70, 75, 80, 85, 90)
	recs = append(recs, domain.DailyRecord{
		Cohort:  domain.CohortClinical,
		Date:    time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC),
		Metrics: map[string]float64{},
	})

	summary := Describe(recs, "efficiency")
	assert.Equal(t, 5, summary.Count)
	assert.Equal(t, 1, summary.Missing)
	assert.InDelta(t, 100.0/6, summary.MissingPercent, 1e-9)
	assert.InDelta(t, 80, summary.Mean, 1e-9)
	assert.InDelta(t, 80, summary.Median, 1e-9)
	assert.InDelta(t, 70, summary.Min, 1e-9)
	assert.InDelta(t, 90, summary.Max, 1e-9)
	assert.InDelta(t, 75, summary.Q25, 1e-9)
	assert.InDelta(t, 85, summary.Q75, 1e-9)
}

func TestDescribeEmpty(t *testing.T) {
	summary := Describe(nil, "steps")
	assert.Equal(t, 0, summary.Count)
	assert.Equal(t, 0.0, summary.MissingPercent)
}
