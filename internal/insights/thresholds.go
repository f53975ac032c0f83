// Package insights turns comparison and per-participant statistics
// into plain-language narrative text, suggested visualizations, and
// anomaly flags. Everything here is a pure function of its inputs.
package insights

import "cohortpulse/pkg/contracts/domain"

// band maps an exclusive upper limit to a narrative fragment. A zero
// Limit marks the open-ended final band.
type band struct {
	Limit float64
	Label string
	Text  string
}

// sleepBands interprets mean nightly sleep in hours. The clinical
// cohort is held to the 7-hour adult guideline; controls to their own
// expected baseline.
var sleepBands = map[domain.Cohort][]band{
	domain.CohortClinical: {
		{6.5, "below-recommended", "well below the recommended 7 hours"},
		{7, "slightly-below", "slightly below the recommended 7 hours"},
		{0, "healthy", "within the healthy range"},
	},
	domain.CohortControl: {
		{7, "below-expected", "below the range expected for this group"},
		{8, "normal", "within the normal range"},
		{0, "good", "in the good range"},
	},
}

// higherBand is a band for metrics where larger values are the
// concern, with descending cut points.
type higherBand struct {
	Above float64
	Label string
	Text  string
}

var sleepVariabilityBands = []higherBand{
	{80, "high", "highly irregular sleep duration from night to night"},
	{60, "moderate", "moderately variable sleep duration"},
	{0, "consistent", "a consistent sleep schedule"},
}

var heartRateBands = []higherBand{
	{80, "elevated", "an elevated resting heart rate"},
	{70, "slightly-elevated", "a slightly elevated resting heart rate"},
	{0, "good", "a resting heart rate in the good range"},
}

var efficiencyGapBands = []higherBand{
	{10, "substantial", "a substantial sleep-efficiency gap between the cohorts"},
	{5, "moderate", "a moderate sleep-efficiency gap between the cohorts"},
	{0, "comparable", "comparable sleep efficiency across the cohorts"},
}

// stepsBands interpret mean daily steps, lower is the concern.
var stepsBands = []band{
	{6000, "below", "below the generally recommended activity level"},
	{8000, "moderate", "a moderate activity level"},
	{0, "good", "a good activity level"},
}

// classifyLow picks the first band whose limit the value falls under.
func classifyLow(value float64, bands []band) band {
	for _, b := range bands {
		if b.Limit > 0 && value < b.Limit {
			return b
		}
	}
	return bands[len(bands)-1]
}

// classifyHigh picks the first band whose floor the value exceeds.
func classifyHigh(value float64, bands []higherBand) higherBand {
	for _, b := range bands {
		if b.Above > 0 && value > b.Above {
			return b
		}
	}
	return bands[len(bands)-1]
}

// concerningLabels marks bucket labels that flip the clinical-relevance
// flag on a participant report.
var concerningLabels = map[string]bool{
	"below-recommended": true,
	"below-expected":    true,
	"high":              true,
	"elevated":          true,
	"below":             true,
}
