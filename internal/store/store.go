package store

import (
	"time"

	"fuzzynews/internal/news2"
)

// DefaultDBPath is the default relative path for the SQLite DB.
// Open() creates the parent dir (e.g. .fuzzynews) if it does not exist.
const DefaultDBPath = ".fuzzynews/assessments.db"

// Assessment is one scored set of observations for a patient.
type Assessment struct {
	ID                  string                `json:"id"`
	PatientID           string                `json:"patient_id"`
	Timestamp           time.Time             `json:"timestamp"`
	Measurements        news2.Measurements    `json:"measurements"`
	CrispScore          int                   `json:"crisp_score"`
	FuzzyScore          float64               `json:"fuzzy_score"`
	RiskCategory        string                `json:"risk_category"`
	RecommendedResponse string                `json:"recommended_response"`
	RedScore            bool                  `json:"red_score"`
	OxygenScale         int                   `json:"oxygen_scale"`
	ParameterScores     news2.ParameterScores `json:"parameter_scores"`
}

// FromResult builds the record for a scored result.
func FromResult(patientID string, r *news2.Result) *Assessment {
	return &Assessment{
		PatientID:           patientID,
		Timestamp:           r.Timestamp,
		Measurements:        r.Input,
		CrispScore:          r.CrispScore,
		FuzzyScore:          r.FuzzyScore,
		RiskCategory:        string(r.RiskCategory),
		RecommendedResponse: r.RecommendedResponse,
		RedScore:            r.RedScore,
		OxygenScale:         r.OxygenScale,
		ParameterScores:     r.ParameterScores,
	}
}

// Store is the persistence facade for assessment history.
// Lookups that find nothing return nil and no error.
type Store interface {
	// SaveAssessment stores a copy of a under a new ID and returns it. A zero
	// Timestamp is set to the current time.
	SaveAssessment(a *Assessment) (id string, err error)
	GetAssessment(id string) (*Assessment, error)
	// ListAssessments returns the patient's assessments newest first. limit
	// <= 0 returns all of them.
	ListAssessments(patientID string, limit int) ([]*Assessment, error)
	// ListAssessmentsSince returns assessments recorded after since, newest
	// first.
	ListAssessmentsSince(patientID string, since time.Time) ([]*Assessment, error)
	Close() error
}
