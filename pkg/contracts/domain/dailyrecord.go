package domain

import (
	"sort"
	"time"
)

// DailyRecord is one participant's merged physiological metrics for one
// calendar day. A metric that was not sourced for that day is simply
// absent from Metrics; it is never stored as zero.
type DailyRecord struct {
	ParticipantID string             `json:"participant_id"`
	Cohort        Cohort             `json:"cohort"`
	Date          time.Time          `json:"date"`
	Source        Provenance         `json:"source"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Value returns the named metric and whether it is present.
func (r DailyRecord) Value(metric string) (float64, bool) {
	v, ok := r.Metrics[metric]
	return v, ok
}

// Set stores a metric value, allocating the map on first use.
func (r *DailyRecord) Set(metric string, v float64) {
	if r.Metrics == nil {
		r.Metrics = make(map[string]float64)
	}
	r.Metrics[metric] = v
}

// DateRange is an inclusive span of calendar days. The zero value means
// "no restriction".
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the range places no restriction on dates.
func (dr DateRange) IsZero() bool {
	return dr.Start.IsZero() && dr.End.IsZero()
}

// Contains reports whether the given day falls inside the range.
func (dr DateRange) Contains(day time.Time) bool {
	if !dr.Start.IsZero() && day.Before(dr.Start) {
		return false
	}
	if !dr.End.IsZero() && day.After(dr.End) {
		return false
	}
	return true
}

// Days returns the number of calendar days in the range, inclusive.
// Returns 0 for an open range.
func (dr DateRange) Days() int {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return 0
	}
	return int(dr.End.Sub(dr.Start).Hours()/24) + 1
}

// MetricValues extracts all non-missing values of one metric from a set
// of records, preserving record order.
func MetricValues(records []DailyRecord, metric string) []float64 {
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if v, ok := rec.Value(metric); ok {
			values = append(values, v)
		}
	}
	return values
}

// FilterCohort returns the subset of records belonging to the cohort.
func FilterCohort(records []DailyRecord, cohort Cohort) []DailyRecord {
	var out []DailyRecord
	for _, rec := range records {
		if rec.Cohort == cohort {
			out = append(out, rec)
		}
	}
	return out
}

// FilterParticipant returns the subset of records for one participant.
func FilterParticipant(records []DailyRecord, participantID string) []DailyRecord {
	var out []DailyRecord
	for _, rec := range records {
		if rec.ParticipantID == participantID {
			out = append(out, rec)
		}
	}
	return out
}

// SortByDate orders records chronologically in place.
func SortByDate(records []DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}
