package store

import "time"

// ShortlistStatus is the evaluation state stored on an applicant.
type ShortlistStatus string

// Shortlist status values.
const (
	StatusPending     ShortlistStatus = "Pending"
	StatusShortlisted ShortlistStatus = "Shortlisted"
	StatusRejected    ShortlistStatus = "Rejected"
)

// Applicant is the root entity. It is created externally by the intake
// form; this subsystem only mutates its derived fields.
type Applicant struct {
	ID              string
	CompressedJSON  string
	ShortlistStatus ShortlistStatus
	LLMSummary      string
	LLMScore        *int
	LLMIssues       string
	LLMFollowUps    string
}

// PersonalDetails is one-to-one with an applicant.
type PersonalDetails struct {
	ID          string
	ApplicantID string
	FullName    string
	Email       string
	Location    string
	LinkedIn    string
}

// WorkExperience is one-to-many with an applicant. Rows are unordered
// at the store level; listing order is whatever the backend returns,
// and both compression and decompression use the same listing call.
type WorkExperience struct {
	ID           string
	ApplicantID  string
	Company      string
	Title        string
	StartDate    string
	EndDate      string
	Technologies string
	Description  string
}

// SalaryPreference is one-to-one with an applicant.
type SalaryPreference struct {
	ID            string
	ApplicantID   string
	PreferredRate float64
	MinimumRate   float64
	Currency      string
	Availability  float64
}

// ShortlistedLead is the write-only output of the shortlist evaluator.
type ShortlistedLead struct {
	ID             string
	ApplicantID    string
	CompressedJSON string
	ScoreReason    string
	CreatedAt      time.Time
}

// EnrichmentFields are the four LLM output fields written back onto an
// applicant after enrichment. A nil Score clears the stored score.
type EnrichmentFields struct {
	Summary   string
	Score     *int
	Issues    string
	FollowUps string
}
