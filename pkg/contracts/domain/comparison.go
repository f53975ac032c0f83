package domain

// MetricComparison holds the two-sample test result for one metric.
// PercentDifference is nil when the control-group mean is too close to
// zero for the ratio to be stable.
type MetricComparison struct {
	Metric            string   `json:"metric"`
	ClinicalMean      float64  `json:"clinical_mean"`
	ClinicalStd       float64  `json:"clinical_std"`
	ClinicalN         int      `json:"clinical_n"`
	ControlMean       float64  `json:"control_mean"`
	ControlStd        float64  `json:"control_std"`
	ControlN          int      `json:"control_n"`
	Difference        float64  `json:"difference"`
	PercentDifference *float64 `json:"percent_difference"`
	TStatistic        float64  `json:"t_statistic"`
	PValue            float64  `json:"p_value"`
	CohensD           float64  `json:"cohens_d"`
	Significant       bool     `json:"significant"`
	EffectSize        string   `json:"effect_size"`
}

// ComparisonSummary aggregates a comparison run. PercentSignificant is
// 0 when no metric qualified for testing.
type ComparisonSummary struct {
	TotalMetrics       int     `json:"total_metrics"`
	SignificantCount   int     `json:"significant_findings"`
	PercentSignificant float64 `json:"percentage_significant"`
}

// ComparisonResult is the output of one clinical-vs-control comparison
// request. It is computed on demand and never persisted.
type ComparisonResult struct {
	Metrics []MetricComparison `json:"metrics"`
	Summary ComparisonSummary  `json:"summary"`
}

// CorrelationResult holds a Pearson correlation between two metrics.
type CorrelationResult struct {
	MetricX        string  `json:"metric_x"`
	MetricY        string  `json:"metric_y"`
	Correlation    float64 `json:"correlation"`
	PValue         float64 `json:"p_value"`
	N              int     `json:"n"`
	Significant    bool    `json:"significant"`
	Interpretation string  `json:"interpretation"`
}

// MetricSummary holds descriptive statistics for a single metric.
type MetricSummary struct {
	Metric         string  `json:"metric"`
	Count          int     `json:"count"`
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	Std            float64 `json:"std"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Q25            float64 `json:"q25"`
	Q75            float64 `json:"q75"`
	Missing        int     `json:"missing"`
	MissingPercent float64 `json:"missing_percent"`
}
