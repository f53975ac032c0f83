// Package dataset turns raw per-family store tables or synthetic
// fallback data into merged per-day records, and decides which of the
// two a request is served from.
package dataset

import (
	"errors"
	"sort"
	"time"

	"cohortpulse/internal/config"
	"cohortpulse/internal/store"
	"cohortpulse/pkg/contracts/domain"
)

// ErrNoData is returned when a participant has no usable rows at all,
// as opposed to an empty-but-valid result set.
var ErrNoData = errors.New("dataset: no data for participant")

// metricRenames maps raw source field names to canonical metric names.
// Fields not listed pass through unchanged.
var metricRenames = map[string]string{
	"caloriesOut":       "calories",
	"restingHeartRate":  "heart_rate",
	"veryActiveMinutes": "activeMinutes",
}

// Merge outer-joins one participant's family tables on calendar date
// into daily records. Sleep metadata is the preferred join base; when
// it is absent the first family that has dates takes its place. Every
// other family contributes its columns to matching dates and adds new
// dates of its own.
func Merge(result *store.FetchResult, rng domain.DateRange) ([]domain.DailyRecord, error) {
	if result == nil || len(result.Families) == 0 {
		return nil, ErrNoData
	}

	merged := make(map[time.Time]map[string]float64)
	for _, family := range config.MetricFamilies {
		table, ok := result.Families[family]
		if !ok || table.Empty() {
			continue
		}
		for date, values := range table.Rows {
			if !rng.IsZero() && !rng.Contains(date) {
				continue
			}
			row, ok := merged[date]
			if !ok {
				row = make(map[string]float64)
				merged[date] = row
			}
			for field, v := range values {
				name := field
				if canonical, ok := metricRenames[field]; ok {
					name = canonical
				}
				if !config.KnownMetric(name) {
					continue
				}
				// First family to supply a metric for a date wins.
				if _, exists := row[name]; !exists {
					row[name] = v
				}
			}
		}
	}
	if len(merged) == 0 {
		return nil, ErrNoData
	}

	dates := make([]time.Time, 0, len(merged))
	for d := range merged {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	records := make([]domain.DailyRecord, 0, len(dates))
	for _, date := range dates {
		if len(merged[date]) == 0 {
			continue
		}
		records = append(records, domain.DailyRecord{
			ParticipantID: result.ParticipantID,
			Cohort:        result.Cohort,
			Date:          date,
			Source:        domain.SourceRemote,
			Metrics:       merged[date],
		})
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}
