// Package services holds the application layer between the HTTP
// handlers and the dataset / stats / chart packages.
package services

import (
	"context"
	"log/slog"

	"cohortpulse/internal/dataset"
	apierrors "cohortpulse/internal/errors"
	"cohortpulse/pkg/contracts/domain"
)

// DataService answers catalog and raw-data questions.
type DataService struct {
	loader *dataset.Loader
	logger *slog.Logger
}

// NewDataService wires the service over a loader.
func NewDataService(loader *dataset.Loader, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		loader: loader,
		logger: logger.With(slog.String("component", "data_service")),
	}
}

// Participants lists the enrolled participants from the catalog.
func (s *DataService) Participants(ctx context.Context) []domain.Participant {
	return s.loader.Participants(ctx)
}

// Pairs lists the matched clinical/control pairs.
func (s *DataService) Pairs() []domain.ParticipantPair {
	return s.loader.Pairs()
}

// Resolve looks a participant ID up in the catalog.
func (s *DataService) Resolve(ctx context.Context, participantID string) (domain.Participant, error) {
	for _, p := range s.loader.Participants(ctx) {
		if p.ID == participantID {
			return p, nil
		}
	}
	return domain.Participant{}, apierrors.ErrParticipantNotFound
}

// ResolveMany resolves each ID, failing on the first unknown one. An
// empty ID list means the whole catalog.
func (s *DataService) ResolveMany(ctx context.Context, participantIDs []string) ([]domain.Participant, error) {
	if len(participantIDs) == 0 {
		return s.loader.Participants(ctx), nil
	}
	participants := make([]domain.Participant, 0, len(participantIDs))
	for _, id := range participantIDs {
		p, err := s.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// Load returns one participant's merged daily records.
func (s *DataService) Load(ctx context.Context, participantID string, rng domain.DateRange) ([]domain.DailyRecord, domain.Provenance, error) {
	p, err := s.Resolve(ctx, participantID)
	if err != nil {
		return nil, "", err
	}
	records, source := s.loader.Load(ctx, p.ID, p.Cohort, rng)
	return records, source, nil
}

// LoadMany returns records for a participant set plus the overall
// outcome (fully remote, partially sampled, or fully sampled).
func (s *DataService) LoadMany(ctx context.Context, participantIDs []string, rng domain.DateRange) ([]domain.DailyRecord, dataset.Outcome, error) {
	participants, err := s.ResolveMany(ctx, participantIDs)
	if err != nil {
		return nil, "", err
	}
	records, outcome := s.loader.LoadMany(ctx, participants, rng)
	return records, outcome, nil
}

// Summary describes one participant's loaded data.
func (s *DataService) Summary(ctx context.Context, participantID string, rng domain.DateRange) (dataset.ParticipantSummary, error) {
	p, err := s.Resolve(ctx, participantID)
	if err != nil {
		return dataset.ParticipantSummary{}, err
	}
	records, source := s.loader.Load(ctx, p.ID, p.Cohort, rng)
	return dataset.Summarize(p.ID, p.Cohort, source, records), nil
}

// SourceStatus reports whether the remote store is serving.
func (s *DataService) SourceStatus(ctx context.Context) dataset.SourceStatus {
	return s.loader.Status(ctx)
}
