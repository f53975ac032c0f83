package dataset

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"cohortpulse/pkg/contracts/domain"
)

// DefaultSampleRange is the synthetic dataset's default study window.
var DefaultSampleRange = domain.DateRange{
	Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2023, 8, 31, 0, 0, 0, 0, time.UTC),
}

// missingRate is the chance that an occasionally-missing metric is
// absent on any given day.
const missingRate = 0.05

// metricParam is one metric's normal distribution and clipping bounds.
type metricParam struct {
	mean, std float64
	min, max  float64
	decimals  int
}

// occasionallyMissing lists metrics that drop out on some days, the way
// real wearable exports do.
var occasionallyMissing = map[string]bool{
	"minutesAsleep": true,
	"steps":         true,
	"heart_rate":    true,
}

// sampleParams returns the generator distribution for each metric in
// the given cohort. The clinical cohort sleeps less, moves less, and
// carries a higher resting heart rate than the matched controls.
func sampleParams(cohort domain.Cohort) map[string]metricParam {
	clinical := cohort == domain.CohortClinical

	pick := func(c, h float64) float64 {
		if clinical {
			return c
		}
		return h
	}

	sleepMean := pick(370, 450)
	sleepStd := pick(65, 50)
	stepsMean := pick(7200, 8900)
	stepsStd := pick(2100, 1800)

	return map[string]metricParam{
		"minutesAsleep":       {sleepMean, sleepStd, 180, 600, 0},
		"minutesAwake":        {60, 20, 10, 150, 0},
		"efficiency":          {pick(73, 85), 8, 50, 100, 1},
		"timeInBed":           {sleepMean + 60, 70, 200, 650, 0},
		"minutesToFallAsleep": {15, 8, 0, 60, 0},
		"minutesAfterWakeup":  {10, 5, 0, 30, 0},
		"steps":               {stepsMean, stepsStd, 1000, 20000, 0},
		"distance":            {stepsMean / 2000, stepsStd / 2000, 0.5, 15, 1},
		"floors":              {pick(8, 12), 4, 0, 40, 0},
		"activeMinutes":       {pick(35, 45), 15, 0, 180, 0},
		"sedentaryMinutes":    {pick(620, 540), 100, 200, 1000, 0},
		"heart_rate":          {pick(75, 68), 6, 55, 95, 0},
		"vo2max":              {pick(42, 48), 5, 30, 70, 1},
		"calories":            {2200, 300, 1500, 3500, 0},
		"breathingRate":       {16, 2, 12, 24, 0},
		"spo2":                {97, 1.5, 92, 100, 1},
	}
}

// Generator produces synthetic daily records that mimic the shape of
// the remote data. A fixed seed gives a reproducible dataset.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator seeded for reproducibility.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate builds one participant's records across the date range. A
// zero range falls back to the default study window.
func (g *Generator) Generate(participantID string, cohort domain.Cohort, rng domain.DateRange) []domain.DailyRecord {
	if rng.IsZero() {
		rng = DefaultSampleRange
	}
	if rng.Start.IsZero() || rng.End.IsZero() || rng.End.Before(rng.Start) {
		return nil
	}

	params := sampleParams(cohort)
	// Draw metrics in a fixed order so a given seed always yields the
	// same dataset.
	metrics := make([]string, 0, len(params))
	for metric := range params {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	records := make([]domain.DailyRecord, 0, rng.Days())
	for day := rng.Start; !day.After(rng.End); day = day.AddDate(0, 0, 1) {
		rec := domain.DailyRecord{
			ParticipantID: participantID,
			Cohort:        cohort,
			Date:          day,
			Source:        domain.SourceSample,
		}
		for _, metric := range metrics {
			if occasionallyMissing[metric] && g.rng.Float64() < missingRate {
				continue
			}
			rec.Set(metric, g.draw(params[metric]))
		}
		records = append(records, rec)
	}
	return records
}

func (g *Generator) draw(p metricParam) float64 {
	v := g.rng.NormFloat64()*p.std + p.mean
	v = math.Max(p.min, math.Min(p.max, v))
	scale := math.Pow(10, float64(p.decimals))
	return math.Round(v*scale) / scale
}
