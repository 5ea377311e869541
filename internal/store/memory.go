package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and dry runs. Work
// experience rows keep insertion order, matching the creation-order
// listing the remote backends produce.
type MemoryStore struct {
	mu          sync.Mutex
	nextID      int
	applicants  map[string]*Applicant
	orderedIDs  []string
	personal    map[string]*PersonalDetails  // keyed by applicant id
	salary      map[string]*SalaryPreference // keyed by applicant id
	experiences []*WorkExperience
	leads       []*ShortlistedLead
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		applicants: make(map[string]*Applicant),
		personal:   make(map[string]*PersonalDetails),
		salary:     make(map[string]*SalaryPreference),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

func (s *MemoryStore) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%06d", prefix, s.nextID)
}

// AddApplicant seeds an applicant record, assigning an id if empty.
func (s *MemoryStore) AddApplicant(a Applicant) *Applicant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = s.newID("rec")
	}
	if a.ShortlistStatus == "" {
		a.ShortlistStatus = StatusPending
	}
	copied := a
	s.applicants[a.ID] = &copied
	s.orderedIDs = append(s.orderedIDs, a.ID)
	return &copied
}

func (s *MemoryStore) GetApplicant(_ context.Context, id string) (*Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applicants[id]
	if !ok {
		return nil, &NotFoundError{Collection: TableApplicants, ID: id}
	}
	copied := *a
	return &copied, nil
}

func (s *MemoryStore) ListApplicants(_ context.Context) ([]Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Applicant, 0, len(s.orderedIDs))
	for _, id := range s.orderedIDs {
		out = append(out, *s.applicants[id])
	}
	return out, nil
}

func (s *MemoryStore) SaveCompressedJSON(_ context.Context, applicantID, compressed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applicants[applicantID]
	if !ok {
		return &WriteError{Collection: TableApplicants, ID: applicantID, Cause: fmt.Errorf("record does not exist")}
	}
	a.CompressedJSON = compressed
	return nil
}

func (s *MemoryStore) SetShortlistStatus(_ context.Context, applicantID string, status ShortlistStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applicants[applicantID]
	if !ok {
		return &WriteError{Collection: TableApplicants, ID: applicantID, Cause: fmt.Errorf("record does not exist")}
	}
	a.ShortlistStatus = status
	return nil
}

func (s *MemoryStore) SaveEnrichment(_ context.Context, applicantID string, fields EnrichmentFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applicants[applicantID]
	if !ok {
		return &WriteError{Collection: TableApplicants, ID: applicantID, Cause: fmt.Errorf("record does not exist")}
	}
	a.LLMSummary = fields.Summary
	a.LLMScore = fields.Score
	a.LLMIssues = fields.Issues
	a.LLMFollowUps = fields.FollowUps
	return nil
}

func (s *MemoryStore) GetPersonalDetails(_ context.Context, applicantID string) (*PersonalDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.personal[applicantID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (s *MemoryStore) CreatePersonalDetails(_ context.Context, rec PersonalDetails) (*PersonalDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.newID("pd")
	copied := rec
	s.personal[rec.ApplicantID] = &copied
	return &copied, nil
}

func (s *MemoryStore) UpdatePersonalDetails(_ context.Context, rec PersonalDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.personal[rec.ApplicantID]
	if !ok || existing.ID != rec.ID {
		return &WriteError{Collection: TablePersonalDetails, ID: rec.ID, Cause: fmt.Errorf("record does not exist")}
	}
	copied := rec
	s.personal[rec.ApplicantID] = &copied
	return nil
}

func (s *MemoryStore) ListWorkExperience(_ context.Context, applicantID string) ([]WorkExperience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []WorkExperience
	for _, exp := range s.experiences {
		if exp.ApplicantID == applicantID {
			out = append(out, *exp)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateWorkExperience(_ context.Context, rec WorkExperience) (*WorkExperience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.newID("we")
	copied := rec
	s.experiences = append(s.experiences, &copied)
	result := copied
	return &result, nil
}

func (s *MemoryStore) UpdateWorkExperience(_ context.Context, rec WorkExperience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, exp := range s.experiences {
		if exp.ID == rec.ID {
			copied := rec
			s.experiences[i] = &copied
			return nil
		}
	}
	return &WriteError{Collection: TableWorkExperience, ID: rec.ID, Cause: fmt.Errorf("record does not exist")}
}

func (s *MemoryStore) DeleteWorkExperience(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, exp := range s.experiences {
		if exp.ID == id {
			s.experiences = append(s.experiences[:i], s.experiences[i+1:]...)
			return nil
		}
	}
	return &WriteError{Collection: TableWorkExperience, ID: id, Cause: fmt.Errorf("record does not exist")}
}

func (s *MemoryStore) GetSalaryPreference(_ context.Context, applicantID string) (*SalaryPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.salary[applicantID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (s *MemoryStore) CreateSalaryPreference(_ context.Context, rec SalaryPreference) (*SalaryPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.newID("sp")
	copied := rec
	s.salary[rec.ApplicantID] = &copied
	return &copied, nil
}

func (s *MemoryStore) UpdateSalaryPreference(_ context.Context, rec SalaryPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.salary[rec.ApplicantID]
	if !ok || existing.ID != rec.ID {
		return &WriteError{Collection: TableSalaryPreferences, ID: rec.ID, Cause: fmt.Errorf("record does not exist")}
	}
	copied := rec
	s.salary[rec.ApplicantID] = &copied
	return nil
}

func (s *MemoryStore) CreateShortlistedLead(_ context.Context, lead ShortlistedLead) (*ShortlistedLead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead.ID = s.newID("sl")
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	copied := lead
	s.leads = append(s.leads, &copied)
	result := copied
	return &result, nil
}

func (s *MemoryStore) HasShortlistedLead(_ context.Context, applicantID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lead := range s.leads {
		if lead.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

// Leads returns a snapshot of the created leads, oldest first.
func (s *MemoryStore) Leads() []ShortlistedLead {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ShortlistedLead, 0, len(s.leads))
	for _, lead := range s.leads {
		out = append(out, *lead)
	}
	return out
}
