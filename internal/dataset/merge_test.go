package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortpulse/internal/config"
	"cohortpulse/internal/store"
	"cohortpulse/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2023, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeOuterJoinsOnDate(t *testing.T) {
	result := &store.FetchResult{
		Cohort:        domain.CohortClinical,
		ParticipantID: "BKQ3HJ",
		Families: map[config.MetricFamily]*store.FamilyTable{
			config.FamilySleepMeta: {
				Family: config.FamilySleepMeta,
				Rows: map[time.Time]map[string]float64{
					day(1): {"minutesAsleep": 380, "efficiency": 72},
					day(2): {"minutesAsleep": 365},
				},
			},
			config.FamilySteps: {
				Family: config.FamilySteps,
				Rows: map[time.Time]map[string]float64{
					day(2): {"steps": 7200},
					day(3): {"steps": 8100},
				},
			},
		},
	}

	records, err := Merge(result, domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, day(1), records[0].Date)
	_, hasSteps := records[0].Value("steps")
	assert.False(t, hasSteps, "day without step data must have the metric absent, not zero")

	steps, ok := records[1].Value("steps")
	require.True(t, ok)
	assert.Equal(t, 7200.0, steps)
	asleep, ok := records[1].Value("minutesAsleep")
	require.True(t, ok)
	assert.Equal(t, 365.0, asleep)

	_, hasSleep := records[2].Value("minutesAsleep")
	assert.False(t, hasSleep, "step-only day joins in without sleep metrics")
	assert.Equal(t, domain.SourceRemote, records[2].Source)
}

func TestMergeRenamesSourceFields(t *testing.T) {
	result := &store.FetchResult{
		Cohort:        domain.CohortControl,
		ParticipantID: "BRT57L",
		Families: map[config.MetricFamily]*store.FamilyTable{
			config.FamilyDaily: {
				Family: config.FamilyDaily,
				Rows: map[time.Time]map[string]float64{
					day(1): {
						"caloriesOut":       2350,
						"restingHeartRate":  66,
						"veryActiveMinutes": 48,
						"unknownColumn":     99,
					},
				},
			},
		},
	}

	records, err := Merge(result, domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, 2350.0, records[0].Metrics["calories"])
	assert.Equal(t, 66.0, records[0].Metrics["heart_rate"])
	assert.Equal(t, 48.0, records[0].Metrics["activeMinutes"])
	_, ok := records[0].Value("caloriesOut")
	assert.False(t, ok, "raw name should not survive the rename")
	_, ok = records[0].Value("unknownColumn")
	assert.False(t, ok, "unrecognized columns are dropped")
}

func TestMergeAppliesDateRange(t *testing.T) {
	result := &store.FetchResult{
		Cohort:        domain.CohortClinical,
		ParticipantID: "BKQ3HJ",
		Families: map[config.MetricFamily]*store.FamilyTable{
			config.FamilySteps: {
				Family: config.FamilySteps,
				Rows: map[time.Time]map[string]float64{
					day(1): {"steps": 7000},
					day(5): {"steps": 7500},
					day(9): {"steps": 8000},
				},
			},
		},
	}

	records, err := Merge(result, domain.DateRange{Start: day(2), End: day(8)})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, day(5), records[0].Date)
}

func TestMergeNoData(t *testing.T) {
	_, err := Merge(nil, domain.DateRange{})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Merge(&store.FetchResult{
		Cohort:        domain.CohortClinical,
		ParticipantID: "BKQ3HJ",
		Families:      map[config.MetricFamily]*store.FamilyTable{},
	}, domain.DateRange{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestMergeRangeExcludesEverything(t *testing.T) {
	result := &store.FetchResult{
		Cohort:        domain.CohortClinical,
		ParticipantID: "BKQ3HJ",
		Families: map[config.MetricFamily]*store.FamilyTable{
			config.FamilySteps: {
				Family: config.FamilySteps,
				Rows:   map[time.Time]map[string]float64{day(1): {"steps": 7000}},
			},
		},
	}

	_, err := Merge(result, domain.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrNoData)
}
