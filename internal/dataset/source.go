package dataset

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"cohortpulse/internal/config"
	"cohortpulse/internal/stats"
	"cohortpulse/internal/store"
	"cohortpulse/pkg/contracts/domain"
)

// Outcome describes where a multi-participant load was served from.
type Outcome string

const (
	// OutcomeRemote means every participant came from the remote store.
	OutcomeRemote Outcome = "remote"
	// OutcomePartial means some participants fell back to sample data.
	OutcomePartial Outcome = "partial"
	// OutcomeSample means the whole load was served synthetically.
	OutcomeSample Outcome = "sample"
)

// RemoteReader is the slice of the store client the loader needs.
type RemoteReader interface {
	Ping(ctx context.Context) error
	ListParticipants(ctx context.Context) (map[domain.Cohort][]string, error)
	FetchAll(ctx context.Context, cohort domain.Cohort, participantID string) (*store.FetchResult, error)
}

// Loader resolves participant catalogs and daily records, preferring
// the remote store and degrading to synthetic sample data whenever the
// store is disabled, unreachable, or empty for a participant.
type Loader struct {
	remote  RemoteReader
	catalog *store.Cache[[]domain.Participant]
	records *store.Cache[[]domain.DailyRecord]
	logger  *slog.Logger
}

// NewLoader builds a loader. A nil remote means sample-only operation.
func NewLoader(remote RemoteReader, cacheCfg config.CacheConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		remote:  remote,
		catalog: store.NewCache[[]domain.Participant](cacheCfg.TTL, 4, nil),
		records: store.NewCache[[]domain.DailyRecord](cacheCfg.TTL, cacheCfg.MaxSize, nil),
		logger:  logger.With(slog.String("component", "dataset")),
	}
}

// Pairs returns the matched clinical/control pair catalog.
func (l *Loader) Pairs() []domain.ParticipantPair {
	pairs := make([]domain.ParticipantPair, len(config.ParticipantPairs))
	copy(pairs, config.ParticipantPairs)
	return pairs
}

// pairIDFor returns the pair a participant belongs to, if any.
func pairIDFor(participantID string) string {
	for _, pair := range config.ParticipantPairs {
		if pair.ClinicalID == participantID || pair.ControlID == participantID {
			return pair.PairID
		}
	}
	return ""
}

// Participants enumerates the catalog, remote first with the static
// pair list as fallback. Results are cached for the configured TTL.
func (l *Loader) Participants(ctx context.Context) []domain.Participant {
	const cacheKey = "catalog"
	if cached, ok := l.catalog.Get(cacheKey); ok {
		return cached
	}

	participants := l.remoteCatalog(ctx)
	if participants == nil {
		participants = staticCatalog()
	}
	l.catalog.Set(cacheKey, participants)
	return participants
}

func (l *Loader) remoteCatalog(ctx context.Context) []domain.Participant {
	if l.remote == nil {
		return nil
	}
	listed, err := l.remote.ListParticipants(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "remote catalog unavailable, using static pairs",
			slog.String("error", err.Error()))
		return nil
	}

	var participants []domain.Participant
	for _, cohort := range []domain.Cohort{domain.CohortClinical, domain.CohortControl} {
		for _, id := range listed[cohort] {
			// Remote enumeration carries no pairing metadata; pairs
			// only exist in the static catalog.
			participants = append(participants, domain.Participant{
				ID:     id,
				Cohort: cohort,
				Source: domain.SourceRemote,
			})
		}
	}
	if len(participants) == 0 {
		l.logger.WarnContext(ctx, "remote catalog empty, using static pairs")
		return nil
	}
	return participants
}

func staticCatalog() []domain.Participant {
	var participants []domain.Participant
	for _, pair := range config.ParticipantPairs {
		participants = append(participants,
			domain.Participant{ID: pair.ClinicalID, Cohort: domain.CohortClinical, PairID: pair.PairID, Source: domain.SourceSample},
			domain.Participant{ID: pair.ControlID, Cohort: domain.CohortControl, PairID: pair.PairID, Source: domain.SourceSample},
		)
	}
	return participants
}

// Load returns one participant's daily records for the range, along
// with the provenance they were served from.
func (l *Loader) Load(ctx context.Context, participantID string, cohort domain.Cohort, rng domain.DateRange) ([]domain.DailyRecord, domain.Provenance) {
	key := recordsKey(participantID, cohort, rng)
	if cached, ok := l.records.Get(key); ok {
		return cached, provenanceOf(cached)
	}

	if l.remote != nil {
		records, err := l.loadRemote(ctx, participantID, cohort, rng)
		if err == nil {
			l.records.Set(key, records)
			return records, domain.SourceRemote
		}
		l.logger.WarnContext(ctx, "remote load failed, generating sample data",
			slog.String("participant", participantID),
			slog.String("error", err.Error()))
	}

	records := l.generate(participantID, cohort, rng)
	l.records.Set(key, records)
	return records, domain.SourceSample
}

func (l *Loader) loadRemote(ctx context.Context, participantID string, cohort domain.Cohort, rng domain.DateRange) ([]domain.DailyRecord, error) {
	result, err := l.remote.FetchAll(ctx, cohort, participantID)
	if err != nil {
		return nil, err
	}
	return Merge(result, rng)
}

func (l *Loader) generate(participantID string, cohort domain.Cohort, rng domain.DateRange) []domain.DailyRecord {
	// Seeding from the participant ID keeps each synthetic participant
	// distinct but stable across requests.
	h := fnv.New64a()
	h.Write([]byte(participantID))
	gen := NewGenerator(int64(h.Sum64()))
	return gen.Generate(participantID, cohort, rng)
}

// LoadMany loads several participants and reports how many fell back
// to sample data via the returned outcome.
func (l *Loader) LoadMany(ctx context.Context, participants []domain.Participant, rng domain.DateRange) ([]domain.DailyRecord, Outcome) {
	var all []domain.DailyRecord
	sampled := 0
	for _, p := range participants {
		records, source := l.Load(ctx, p.ID, p.Cohort, rng)
		if source == domain.SourceSample {
			sampled++
		}
		all = append(all, records...)
	}
	domain.SortByDate(all)

	switch {
	case sampled == 0:
		return all, OutcomeRemote
	case sampled == len(participants):
		return all, OutcomeSample
	default:
		return all, OutcomePartial
	}
}

func recordsKey(participantID string, cohort domain.Cohort, rng domain.DateRange) string {
	return fmt.Sprintf("records/%s/%s/%s/%s",
		cohort, participantID,
		rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
}

func provenanceOf(records []domain.DailyRecord) domain.Provenance {
	if len(records) > 0 {
		return records[0].Source
	}
	return domain.SourceSample
}

// InvalidateCatalog drops the cached participant catalog so the next
// enumeration re-probes the remote store.
func (l *Loader) InvalidateCatalog() {
	l.catalog.Invalidate("catalog")
}

// summaryMetrics are the headline metrics whose descriptive stats ride
// along in the at-a-glance summary.
var summaryMetrics = []string{"minutesAsleep", "steps", "heart_rate", "efficiency"}

// ParticipantSummary describes one participant's loaded data at a
// glance.
type ParticipantSummary struct {
	ParticipantID  string                          `json:"participant_id"`
	Cohort         domain.Cohort                   `json:"cohort"`
	PairID         string                          `json:"pair_id,omitempty"`
	Source         domain.Provenance               `json:"source"`
	Days           int                             `json:"days"`
	FirstDate      string                          `json:"first_date,omitempty"`
	LastDate       string                          `json:"last_date,omitempty"`
	MetricsPresent []string                        `json:"metrics_present"`
	KeyMetrics     map[string]domain.MetricSummary `json:"key_metrics,omitempty"`
}

// Summarize builds a summary over one participant's records.
func Summarize(participantID string, cohort domain.Cohort, source domain.Provenance, records []domain.DailyRecord) ParticipantSummary {
	summary := ParticipantSummary{
		ParticipantID:  participantID,
		Cohort:         cohort,
		PairID:         pairIDFor(participantID),
		Source:         source,
		Days:           len(records),
		MetricsPresent: []string{},
	}
	if len(records) == 0 {
		return summary
	}

	summary.FirstDate = records[0].Date.Format("2006-01-02")
	summary.LastDate = records[len(records)-1].Date.Format("2006-01-02")

	present := make(map[string]bool)
	for _, rec := range records {
		for metric := range rec.Metrics {
			present[metric] = true
		}
	}
	for _, metric := range config.AvailableMetrics {
		if present[metric] {
			summary.MetricsPresent = append(summary.MetricsPresent, metric)
		}
	}

	summary.KeyMetrics = make(map[string]domain.MetricSummary, len(summaryMetrics))
	for _, metric := range summaryMetrics {
		summary.KeyMetrics[metric] = stats.Describe(records, metric)
	}
	return summary
}

// SourceStatus reports the remote store's reachability.
type SourceStatus struct {
	RemoteConfigured bool      `json:"remote_configured"`
	RemoteHealthy    bool      `json:"remote_healthy"`
	FallbackActive   bool      `json:"fallback_active"`
	CheckedAt        time.Time `json:"checked_at"`
}

// Status probes the remote store once and reports the result.
func (l *Loader) Status(ctx context.Context) SourceStatus {
	status := SourceStatus{
		RemoteConfigured: l.remote != nil,
		CheckedAt:        time.Now().UTC(),
	}
	if l.remote == nil {
		status.FallbackActive = true
		return status
	}
	if err := l.remote.Ping(ctx); err != nil {
		l.logger.WarnContext(ctx, "remote store unhealthy", slog.String("error", err.Error()))
		status.FallbackActive = true
		return status
	}
	status.RemoteHealthy = true
	return status
}
