package stats

import (
	"math"

	"cohortpulse/internal/config"
	"cohortpulse/pkg/contracts/domain"
)

// MinGroupSize is the smallest per-group sample size a two-sample test
// will run on.
const MinGroupSize = 3

// zeroMeanGuard is the threshold below which a control mean is treated
// as zero, making a percent difference unstable.
const zeroMeanGuard = 1e-9

// TTest runs Student's two-sample t-test with pooled variance and
// returns the t statistic and two-sided p-value. Both groups must hold
// at least MinGroupSize values; otherwise NaNs are returned.
func TTest(a, b []float64) (t, p float64) {
	if len(a) < MinGroupSize || len(b) < MinGroupSize {
		return math.NaN(), math.NaN()
	}

	na, nb := float64(len(a)), float64(len(b))
	meanA, meanB := Mean(a), Mean(b)
	varA, varB := StdDev(a)*StdDev(a), StdDev(b)*StdDev(b)

	df := na + nb - 2
	pooled := ((na-1)*varA + (nb-1)*varB) / df
	se := math.Sqrt(pooled * (1/na + 1/nb))
	if se == 0 {
		return math.NaN(), math.NaN()
	}

	t = (meanA - meanB) / se
	return t, studentTPValue(t, df)
}

// CohensD returns the pooled-variance standardized mean difference. A
// zero pooled deviation yields 0 rather than infinity.
func CohensD(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	na, nb := float64(len(a)), float64(len(b))
	varA, varB := StdDev(a)*StdDev(a), StdDev(b)*StdDev(b)
	pooled := math.Sqrt(((na-1)*varA + (nb-1)*varB) / (na + nb - 2))
	if pooled == 0 {
		return 0
	}
	return (Mean(a) - Mean(b)) / pooled
}

// EffectSizeLabel buckets a Cohen's d magnitude into the conventional
// qualitative labels.
func EffectSizeLabel(d float64) string {
	switch abs := math.Abs(d); {
	case abs < 0.2:
		return "Negligible"
	case abs < 0.5:
		return "Small"
	case abs < 0.8:
		return "Medium"
	default:
		return "Large"
	}
}

// CompareMetric tests one metric between the two cohorts. It returns
// false when either group is below MinGroupSize.
func CompareMetric(metric string, clinical, control []float64) (domain.MetricComparison, bool) {
	if len(clinical) < MinGroupSize || len(control) < MinGroupSize {
		return domain.MetricComparison{}, false
	}

	t, p := TTest(clinical, control)
	if math.IsNaN(t) || math.IsNaN(p) {
		return domain.MetricComparison{}, false
	}

	meanClinical, meanControl := Mean(clinical), Mean(control)
	d := CohensD(clinical, control)

	cmp := domain.MetricComparison{
		Metric:       metric,
		ClinicalMean: meanClinical,
		ClinicalStd:  StdDev(clinical),
		ClinicalN:    len(clinical),
		ControlMean:  meanControl,
		ControlStd:   StdDev(control),
		ControlN:     len(control),
		Difference:   meanClinical - meanControl,
		TStatistic:   t,
		PValue:       p,
		CohensD:      d,
		Significant:  p < config.Alpha,
		EffectSize:   EffectSizeLabel(d),
	}
	if math.Abs(meanControl) >= zeroMeanGuard {
		pct := (meanClinical - meanControl) / meanControl * 100
		cmp.PercentDifference = &pct
	}
	return cmp, true
}

// CompareCohorts runs CompareMetric across the requested metrics over
// the given records, split by cohort. Metrics without enough data in
// either group are skipped, not failed.
func CompareCohorts(records []domain.DailyRecord, metrics []string) domain.ComparisonResult {
	clinical := domain.FilterCohort(records, domain.CohortClinical)
	control := domain.FilterCohort(records, domain.CohortControl)

	result := domain.ComparisonResult{Metrics: []domain.MetricComparison{}}
	for _, metric := range metrics {
		cmp, ok := CompareMetric(metric,
			domain.MetricValues(clinical, metric),
			domain.MetricValues(control, metric))
		if !ok {
			continue
		}
		result.Metrics = append(result.Metrics, cmp)
		if cmp.Significant {
			result.Summary.SignificantCount++
		}
	}

	result.Summary.TotalMetrics = len(result.Metrics)
	if result.Summary.TotalMetrics > 0 {
		result.Summary.PercentSignificant =
			float64(result.Summary.SignificantCount) / float64(result.Summary.TotalMetrics) * 100
	}
	return result
}

// Correlate computes the Pearson correlation between two metrics over
// days where both are present. It returns false with fewer than
// MinGroupSize complete pairs.
func Correlate(records []domain.DailyRecord, metricX, metricY string) (domain.CorrelationResult, bool) {
	var xs, ys []float64
	for _, rec := range records {
		x, okX := rec.Value(metricX)
		y, okY := rec.Value(metricY)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < MinGroupSize {
		return domain.CorrelationResult{}, false
	}

	r := pearson(xs, ys)
	if math.IsNaN(r) {
		return domain.CorrelationResult{}, false
	}

	n := len(xs)
	p := correlationPValue(r, n)
	return domain.CorrelationResult{
		MetricX:        metricX,
		MetricY:        metricY,
		Correlation:    r,
		PValue:         p,
		N:              n,
		Significant:    p < config.Alpha,
		Interpretation: CorrelationLabel(r),
	}, true
}

func pearson(xs, ys []float64) float64 {
	meanX, meanY := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// correlationPValue converts r to a t statistic with n-2 degrees of
// freedom for a two-sided test.
func correlationPValue(r float64, n int) float64 {
	if n < 3 {
		return math.NaN()
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	return studentTPValue(t, df)
}

// CorrelationLabel buckets |r| into the conventional strength labels.
func CorrelationLabel(r float64) string {
	switch abs := math.Abs(r); {
	case abs < 0.1:
		return "Negligible"
	case abs < 0.3:
		return "Weak"
	case abs < 0.5:
		return "Moderate"
	case abs < 0.7:
		return "Strong"
	default:
		return "Very Strong"
	}
}

// Describe computes descriptive statistics for one metric over the
// records. Missing counts days where the metric is absent.
func Describe(records []domain.DailyRecord, metric string) domain.MetricSummary {
	values := domain.MetricValues(records, metric)

	summary := domain.MetricSummary{
		Metric:  metric,
		Count:   len(values),
		Missing: len(records) - len(values),
	}
	if len(records) > 0 {
		summary.MissingPercent = float64(summary.Missing) / float64(len(records)) * 100
	}
	if len(values) == 0 {
		return summary
	}

	summary.Mean = Mean(values)
	summary.Median = Median(values)
	summary.Std = StdDev(values)
	summary.Min = Min(values)
	summary.Max = Max(values)
	summary.Q25 = Quantile(values, 0.25)
	summary.Q75 = Quantile(values, 0.75)
	return summary
}
