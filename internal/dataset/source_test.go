package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cohortpulse/internal/config"
	"cohortpulse/internal/store"
	"cohortpulse/pkg/contracts/domain"
)

// fakeRemote scripts the loader's remote dependency.
type fakeRemote struct {
	listErr    error
	listed     map[domain.Cohort][]string
	fetchErr   error
	families   map[config.MetricFamily]*store.FamilyTable
	fetchCalls int
}

func (f *fakeRemote) Ping(context.Context) error { return f.listErr }

func (f *fakeRemote) ListParticipants(context.Context) (map[domain.Cohort][]string, error) {
	return f.listed, f.listErr
}

func (f *fakeRemote) FetchAll(_ context.Context, cohort domain.Cohort, id string) (*store.FetchResult, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &store.FetchResult{Cohort: cohort, ParticipantID: id, Families: f.families}, nil
}

func cacheCfg() config.CacheConfig {
	return config.CacheConfig{TTL: time.Hour, MaxSize: 32}
}

func TestParticipantsRemote(t *testing.T) {
	remote := &fakeRemote{listed: map[domain.Cohort][]string{
		domain.CohortClinical: {"BKQ3HJ"},
		domain.CohortControl:  {"BRT57L", "ZZZZZZ"},
	}}
	loader := NewLoader(remote, cacheCfg(), nil)

	got := loader.Participants(context.Background())
	require.Len(t, got, 3)
	assert.Equal(t, "BKQ3HJ", got[0].ID)
	assert.Equal(t, domain.SourceRemote, got[0].Source)
	assert.Empty(t, got[0].PairID, "remote enumeration carries no pairing metadata")
}

func TestParticipantsFallsBackToStaticPairs(t *testing.T) {
	loader := NewLoader(&fakeRemote{listErr: errors.New("connection refused")}, cacheCfg(), nil)

	got := loader.Participants(context.Background())
	require.Len(t, got, 10, "five static pairs")
	assert.Equal(t, domain.SourceSample, got[0].Source)
}

func TestParticipantsNilRemote(t *testing.T) {
	loader := NewLoader(nil, cacheCfg(), nil)
	got := loader.Participants(context.Background())
	require.Len(t, got, 10)
}

func TestLoadRemoteSuccess(t *testing.T) {
	remote := &fakeRemote{families: map[config.MetricFamily]*store.FamilyTable{
		config.FamilySteps: {
			Family: config.FamilySteps,
			Rows: map[time.Time]map[string]float64{
				time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC): {"steps": 7000},
			},
		},
	}}
	loader := NewLoader(remote, cacheCfg(), nil)

	records, source := loader.Load(context.Background(), "BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	require.Len(t, records, 1)
	assert.Equal(t, domain.SourceRemote, source)
}

func TestLoadFallsBackToSample(t *testing.T) {
	remote := &fakeRemote{fetchErr: errors.New("timeout")}
	loader := NewLoader(remote, cacheCfg(), nil)

	records, source := loader.Load(context.Background(), "BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	assert.Equal(t, domain.SourceSample, source)
	assert.NotEmpty(t, records)
}

func TestLoadEmptyRemoteFallsBack(t *testing.T) {
	remote := &fakeRemote{families: map[config.MetricFamily]*store.FamilyTable{}}
	loader := NewLoader(remote, cacheCfg(), nil)

	_, source := loader.Load(context.Background(), "BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	assert.Equal(t, domain.SourceSample, source)
}

func TestLoadUsesCache(t *testing.T) {
	remote := &fakeRemote{families: map[config.MetricFamily]*store.FamilyTable{
		config.FamilySteps: {
			Family: config.FamilySteps,
			Rows: map[time.Time]map[string]float64{
				time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC): {"steps": 7000},
			},
		},
	}}
	loader := NewLoader(remote, cacheCfg(), nil)

	loader.Load(context.Background(), "BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	loader.Load(context.Background(), "BKQ3HJ", domain.CohortClinical, domain.DateRange{})
	assert.Equal(t, 1, remote.fetchCalls, "second load should be served from cache")
}

func TestLoadManyOutcomes(t *testing.T) {
	participants := []domain.Participant{
		{ID: "BKQ3HJ", Cohort: domain.CohortClinical},
		{ID: "BRT57L", Cohort: domain.CohortControl},
	}

	loader := NewLoader(nil, cacheCfg(), nil)
	records, outcome := loader.LoadMany(context.Background(), participants, domain.DateRange{})
	assert.Equal(t, OutcomeSample, outcome)
	assert.NotEmpty(t, records)

	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Date.Before(records[i-1].Date), "records sorted by date")
	}
}

func TestSummarize(t *testing.T) {
	records := NewGenerator(5).Generate("BKQ3HJ", domain.CohortClinical, domain.DateRange{
		Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC),
	})

	summary := Summarize("BKQ3HJ", domain.CohortClinical, domain.SourceSample, records)
	assert.Equal(t, 10, summary.Days)
	assert.Equal(t, "2023-06-01", summary.FirstDate)
	assert.Equal(t, "2023-06-10", summary.LastDate)
	assert.Equal(t, "PAIR001", summary.PairID)
	assert.Contains(t, summary.MetricsPresent, "efficiency")

	require.Len(t, summary.KeyMetrics, 4)
	for _, metric := range []string{"minutesAsleep", "steps", "heart_rate", "efficiency"} {
		ms, ok := summary.KeyMetrics[metric]
		require.True(t, ok, "%s missing from key metric block", metric)
		assert.Equal(t, metric, ms.Metric)
		assert.Equal(t, 10, ms.Count+ms.Missing)
		if ms.Count > 0 {
			assert.GreaterOrEqual(t, ms.Max, ms.Min)
			assert.GreaterOrEqual(t, ms.Mean, ms.Min)
			assert.LessOrEqual(t, ms.Mean, ms.Max)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize("BKQ3HJ", domain.CohortClinical, domain.SourceSample, nil)
	assert.Equal(t, 0, summary.Days)
	assert.Empty(t, summary.FirstDate)
	assert.NotNil(t, summary.MetricsPresent)
}

func TestStatus(t *testing.T) {
	healthy := NewLoader(&fakeRemote{}, cacheCfg(), nil)
	status := healthy.Status(context.Background())
	assert.True(t, status.RemoteConfigured)
	assert.True(t, status.RemoteHealthy)
	assert.False(t, status.FallbackActive)

	offline := NewLoader(&fakeRemote{listErr: errors.New("down")}, cacheCfg(), nil)
	status = offline.Status(context.Background())
	assert.True(t, status.RemoteConfigured)
	assert.False(t, status.RemoteHealthy)
	assert.True(t, status.FallbackActive)

	sampleOnly := NewLoader(nil, cacheCfg(), nil)
	status = sampleOnly.Status(context.Background())
	assert.False(t, status.RemoteConfigured)
	assert.True(t, status.FallbackActive)
}
