package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortpulse/internal/config"
	"cohortpulse/pkg/contracts/domain"
)

func TestGenerateCoversRange(t *testing.T) {
	gen := NewGenerator(1)
	rng := domain.DateRange{
		Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	records := gen.Generate("BKQ3HJ", domain.CohortClinical, rng)
	require.Len(t, records, 30)
	assert.Equal(t, rng.Start, records[0].Date)
	assert.Equal(t, rng.End, records[len(records)-1].Date)
	for _, rec := range records {
		assert.Equal(t, "BKQ3HJ", rec.ParticipantID)
		assert.Equal(t, domain.SourceSample, rec.Source)
	}
}

func TestGenerateDefaultRange(t *testing.T) {
	records := NewGenerator(1).Generate("BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	assert.Len(t, records, 92, "June through August inclusive")
}

func TestGenerateValuesWithinBounds(t *testing.T) {
	records := NewGenerator(7).Generate("BRT57L", domain.CohortControl, domain.DateRange{})
	params := sampleParams(domain.CohortControl)

	for _, rec := range records {
		for metric, v := range rec.Metrics {
			p, ok := params[metric]
			require.True(t, ok, "unexpected metric %s", metric)
			assert.GreaterOrEqual(t, v, p.min, "%s below clip floor", metric)
			assert.LessOrEqual(t, v, p.max, "%s above clip ceiling", metric)
			assert.True(t, config.KnownMetric(metric))
		}
	}
}

func TestGenerateReproducible(t *testing.T) {
	a := NewGenerator(42).Generate("BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	b := NewGenerator(42).Generate("BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	assert.Equal(t, a, b)
}

func TestGenerateCohortSeparation(t *testing.T) {
	clinical := NewGenerator(3).Generate("BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	control := NewGenerator(4).Generate("BRT57L", domain.CohortControl, domain.DateRange{})

	mean := func(records []domain.DailyRecord, metric string) float64 {
		values := domain.MetricValues(records, metric)
		require.NotEmpty(t, values)
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}

	assert.Less(t, mean(clinical, "minutesAsleep"), mean(control, "minutesAsleep"),
		"clinical cohort should sleep less on average")
	assert.Greater(t, mean(clinical, "heart_rate"), mean(control, "heart_rate"),
		"clinical cohort should carry a higher resting heart rate")
	assert.Less(t, mean(clinical, "steps"), mean(control, "steps"))
}

func TestGenerateMissingness(t *testing.T) {
	records := NewGenerator(9).Generate("BKQ3HJ", domain.CohortClinical, domain.DateRange{})

	missing := 0
	for _, rec := range records {
		if _, ok := rec.Value("steps"); !ok {
			missing++
		}
		// Metrics outside the dropout set are always present.
		_, ok := rec.Value("efficiency")
		assert.True(t, ok)
	}
	assert.Greater(t, len(records), missing, "most days should carry steps")
}

func TestGenerateInvalidRange(t *testing.T) {
	records := NewGenerator(1).Generate("BKQ3HJ", domain.CohortClinical, domain.DateRange{
		Start: time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Nil(t, records)
}
