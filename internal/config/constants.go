package config

import "cohortpulse/pkg/contracts/domain"

// Alpha is the fixed significance threshold for all statistical tests.
const Alpha = 0.05

// MetricFamily names one category of source files in the remote store.
type MetricFamily string

const (
	FamilySleepMeta MetricFamily = "sleep-meta"
	FamilyDaily     MetricFamily = "daily"
	FamilySteps     MetricFamily = "steps"
	FamilyHeart     MetricFamily = "heart"
	FamilyBreath    MetricFamily = "breath"
	FamilySpO2      MetricFamily = "spo2"
)

// MetricFamilies lists every family the reader fetches, in merge order.
// Sleep metadata comes first because the merger uses it as join base.
var MetricFamilies = []MetricFamily{
	FamilySleepMeta,
	FamilyDaily,
	FamilySteps,
	FamilyHeart,
	FamilyBreath,
	FamilySpO2,
}

// AvailableMetrics lists the sixteen recognized daily metrics in
// display order.
var AvailableMetrics = []string{
	// Sleep
	"minutesAsleep",
	"minutesAwake",
	"efficiency",
	"timeInBed",
	"minutesToFallAsleep",
	"minutesAfterWakeup",

	// Activity
	"steps",
	"distance",
	"floors",
	"activeMinutes",
	"sedentaryMinutes",

	// Cardiovascular
	"heart_rate",
	"vo2max",

	// Energy
	"calories",

	// Breathing & oxygen
	"breathingRate",
	"spo2",
}

// MetricLabels maps metric names to human-readable display labels.
var MetricLabels = map[string]string{
	"minutesAsleep":       "Minutes Asleep",
	"minutesAwake":        "Minutes Awake",
	"efficiency":          "Sleep Efficiency (%)",
	"timeInBed":           "Time in Bed (minutes)",
	"minutesToFallAsleep": "Minutes to Fall Asleep",
	"minutesAfterWakeup":  "Minutes After Wakeup",
	"steps":               "Daily Steps",
	"distance":            "Distance (miles)",
	"floors":              "Floors Climbed",
	"activeMinutes":       "Active Minutes",
	"sedentaryMinutes":    "Sedentary Minutes",
	"heart_rate":          "Resting Heart Rate (BPM)",
	"vo2max":              "VO2 Max (ml/kg/min)",
	"calories":            "Calories Burned",
	"breathingRate":       "Breathing Rate (breaths/min)",
	"spo2":                "Blood Oxygen Saturation (%)",
}

// KnownMetric reports whether the name is one of the recognized metrics.
func KnownMetric(name string) bool {
	_, ok := MetricLabels[name]
	return ok
}

// ParticipantPairs is the static fallback catalog used whenever the
// remote store is unreachable or yields nothing.
var ParticipantPairs = []domain.ParticipantPair{
	{PairID: "PAIR001", ClinicalID: "BKQ3HJ", ControlID: "BRT57L"},
	{PairID: "PAIR002", ClinicalID: "BWPTFS", ControlID: "BWY5LB"},
	{PairID: "PAIR003", ClinicalID: "BX8KLH", ControlID: "BX8NTV"},
	{PairID: "PAIR004", ClinicalID: "BXMMHR", ControlID: "BYG334"},
	{PairID: "PAIR005", ClinicalID: "BZCKBJ", ControlID: "C227P4"},
}

// ColorPalettes maps palette names to hex color cycles.
var ColorPalettes = map[string][]string{
	"default":         {"#3498db", "#e74c3c", "#2ecc71", "#f39c12", "#9b59b6"},
	"colorblind-safe": {"#0173B2", "#DE8F05", "#029E73", "#CC78BC", "#CA9161"},
	"viridis":         {"#440154", "#31688e", "#35b779", "#fde724"},
	"plasma":          {"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"},
}

// Palette resolves a palette name, falling back to the default cycle.
func Palette(name string) []string {
	if p, ok := ColorPalettes[name]; ok {
		return p
	}
	return ColorPalettes["default"]
}
