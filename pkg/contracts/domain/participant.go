package domain

// Cohort identifies which of the two study groups a participant belongs to.
type Cohort string

const (
	// CohortClinical is the clinical study group.
	CohortClinical Cohort = "clinical"
	// CohortControl is the matched healthy-control group.
	CohortControl Cohort = "control"
)

// Valid reports whether the cohort is one of the two known tokens.
func (c Cohort) Valid() bool {
	return c == CohortClinical || c == CohortControl
}

// Provenance records where a participant's data came from.
type Provenance string

const (
	// SourceRemote marks data fetched from the live remote store.
	SourceRemote Provenance = "remote"
	// SourceSample marks synthetically generated fallback data.
	SourceSample Provenance = "sample"
)

// Participant is one enrolled study subject. Instances are created at
// catalog-enumeration time and never mutated afterwards.
type Participant struct {
	ID     string     `json:"id"`
	Cohort Cohort     `json:"cohort"`
	PairID string     `json:"pair_id,omitempty"`
	Source Provenance `json:"source"`
}

// ParticipantPair links a clinical participant with its matched control.
type ParticipantPair struct {
	PairID     string `json:"pair_id"`
	ClinicalID string `json:"clinical_id"`
	ControlID  string `json:"control_id"`
}
