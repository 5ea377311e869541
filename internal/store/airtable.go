package store

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/applicant-intake/internal/airtable"
)

// Table names in the applicant base.
const (
	TableApplicants        = "Applicants"
	TablePersonalDetails   = "Personal Details"
	TableWorkExperience    = "Work Experience"
	TableSalaryPreferences = "Salary Preferences"
	TableShortlistedLeads  = "Shortlisted Leads"
)

// AirtableStore implements Store over the Airtable REST API. Child
// records are linked to their applicant through an "Applicant ID" link
// field and looked up with a server-side filterByFormula expression.
type AirtableStore struct {
	client *airtable.Client
}

// NewAirtableStore creates a Store backed by the given Airtable client.
func NewAirtableStore(client *airtable.Client) *AirtableStore {
	return &AirtableStore{client: client}
}

// Close is a no-op; the underlying HTTP client holds no resources.
func (s *AirtableStore) Close() {}

func linkFormula(field, applicantID string) string {
	return fmt.Sprintf("{%s} = '%s'", field, applicantID)
}

func (s *AirtableStore) GetApplicant(ctx context.Context, id string) (*Applicant, error) {
	rec, err := s.client.GetRecord(ctx, TableApplicants, id)
	if err != nil {
		return nil, s.readError(TableApplicants, id, err)
	}
	return applicantFromRecord(rec), nil
}

func (s *AirtableStore) ListApplicants(ctx context.Context) ([]Applicant, error) {
	recs, err := s.client.ListRecords(ctx, TableApplicants, "")
	if err != nil {
		return nil, s.readError(TableApplicants, "", err)
	}
	applicants := make([]Applicant, 0, len(recs))
	for i := range recs {
		applicants = append(applicants, *applicantFromRecord(&recs[i]))
	}
	return applicants, nil
}

func (s *AirtableStore) SaveCompressedJSON(ctx context.Context, applicantID, compressed string) error {
	_, err := s.client.UpdateRecord(ctx, TableApplicants, applicantID, map[string]any{
		"Compressed JSON": compressed,
	})
	return s.writeError(TableApplicants, applicantID, err)
}

func (s *AirtableStore) SetShortlistStatus(ctx context.Context, applicantID string, status ShortlistStatus) error {
	_, err := s.client.UpdateRecord(ctx, TableApplicants, applicantID, map[string]any{
		"Shortlist Status": string(status),
	})
	return s.writeError(TableApplicants, applicantID, err)
}

func (s *AirtableStore) SaveEnrichment(ctx context.Context, applicantID string, fields EnrichmentFields) error {
	update := map[string]any{
		"LLM Summary":    fields.Summary,
		"LLM Issues":     fields.Issues,
		"LLM Follow-Ups": fields.FollowUps,
	}
	if fields.Score != nil {
		update["LLM Score"] = *fields.Score
	} else {
		update["LLM Score"] = nil
	}
	_, err := s.client.UpdateRecord(ctx, TableApplicants, applicantID, update)
	return s.writeError(TableApplicants, applicantID, err)
}

func (s *AirtableStore) GetPersonalDetails(ctx context.Context, applicantID string) (*PersonalDetails, error) {
	recs, err := s.client.ListRecords(ctx, TablePersonalDetails, linkFormula("Applicant ID", applicantID))
	if err != nil {
		return nil, s.readError(TablePersonalDetails, "", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return personalDetailsFromRecord(&recs[0], applicantID), nil
}

func (s *AirtableStore) CreatePersonalDetails(ctx context.Context, rec PersonalDetails) (*PersonalDetails, error) {
	created, err := s.client.CreateRecord(ctx, TablePersonalDetails, personalDetailsFields(rec))
	if err != nil {
		return nil, s.writeError(TablePersonalDetails, "", err)
	}
	return personalDetailsFromRecord(created, rec.ApplicantID), nil
}

func (s *AirtableStore) UpdatePersonalDetails(ctx context.Context, rec PersonalDetails) error {
	_, err := s.client.UpdateRecord(ctx, TablePersonalDetails, rec.ID, personalDetailsFields(rec))
	return s.writeError(TablePersonalDetails, rec.ID, err)
}

func (s *AirtableStore) ListWorkExperience(ctx context.Context, applicantID string) ([]WorkExperience, error) {
	recs, err := s.client.ListRecords(ctx, TableWorkExperience, linkFormula("Applicant ID", applicantID))
	if err != nil {
		return nil, s.readError(TableWorkExperience, "", err)
	}
	experiences := make([]WorkExperience, 0, len(recs))
	for i := range recs {
		experiences = append(experiences, *workExperienceFromRecord(&recs[i], applicantID))
	}
	return experiences, nil
}

func (s *AirtableStore) CreateWorkExperience(ctx context.Context, rec WorkExperience) (*WorkExperience, error) {
	created, err := s.client.CreateRecord(ctx, TableWorkExperience, workExperienceFields(rec))
	if err != nil {
		return nil, s.writeError(TableWorkExperience, "", err)
	}
	return workExperienceFromRecord(created, rec.ApplicantID), nil
}

func (s *AirtableStore) UpdateWorkExperience(ctx context.Context, rec WorkExperience) error {
	_, err := s.client.UpdateRecord(ctx, TableWorkExperience, rec.ID, workExperienceFields(rec))
	return s.writeError(TableWorkExperience, rec.ID, err)
}

func (s *AirtableStore) DeleteWorkExperience(ctx context.Context, id string) error {
	err := s.client.DeleteRecord(ctx, TableWorkExperience, id)
	return s.writeError(TableWorkExperience, id, err)
}

func (s *AirtableStore) GetSalaryPreference(ctx context.Context, applicantID string) (*SalaryPreference, error) {
	recs, err := s.client.ListRecords(ctx, TableSalaryPreferences, linkFormula("Applicant ID", applicantID))
	if err != nil {
		return nil, s.readError(TableSalaryPreferences, "", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return salaryPreferenceFromRecord(&recs[0], applicantID), nil
}

func (s *AirtableStore) CreateSalaryPreference(ctx context.Context, rec SalaryPreference) (*SalaryPreference, error) {
	created, err := s.client.CreateRecord(ctx, TableSalaryPreferences, salaryPreferenceFields(rec))
	if err != nil {
		return nil, s.writeError(TableSalaryPreferences, "", err)
	}
	return salaryPreferenceFromRecord(created, rec.ApplicantID), nil
}

func (s *AirtableStore) UpdateSalaryPreference(ctx context.Context, rec SalaryPreference) error {
	_, err := s.client.UpdateRecord(ctx, TableSalaryPreferences, rec.ID, salaryPreferenceFields(rec))
	return s.writeError(TableSalaryPreferences, rec.ID, err)
}

func (s *AirtableStore) CreateShortlistedLead(ctx context.Context, lead ShortlistedLead) (*ShortlistedLead, error) {
	createdAt := lead.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	created, err := s.client.CreateRecord(ctx, TableShortlistedLeads, map[string]any{
		"Applicant":       []string{lead.ApplicantID},
		"Compressed JSON": lead.CompressedJSON,
		"Score Reason":    lead.ScoreReason,
		"Created At":      createdAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, s.writeError(TableShortlistedLeads, "", err)
	}
	result := lead
	result.ID = created.ID
	result.CreatedAt = createdAt
	return &result, nil
}

func (s *AirtableStore) HasShortlistedLead(ctx context.Context, applicantID string) (bool, error) {
	recs, err := s.client.ListRecords(ctx, TableShortlistedLeads, linkFormula("Applicant", applicantID))
	if err != nil {
		return false, s.readError(TableShortlistedLeads, "", err)
	}
	return len(recs) > 0, nil
}

// readError maps API errors on reads: 404 becomes NotFound, everything
// else is a transport failure.
func (s *AirtableStore) readError(collection, id string, err error) error {
	if err == nil {
		return nil
	}
	if airtable.IsNotFound(err) {
		return &NotFoundError{Collection: collection, ID: id}
	}
	return &TransportError{Op: "read " + collection, Cause: err}
}

// writeError maps API errors on mutations: transient failures stay
// transport errors, anything the API rejected is a write failure.
func (s *AirtableStore) writeError(collection, id string, err error) error {
	if err == nil {
		return nil
	}
	if airtable.IsTransient(err) {
		return &TransportError{Op: "write " + collection, Cause: err}
	}
	return &WriteError{Collection: collection, ID: id, Cause: err}
}

// Field map conversions. Airtable returns every numeric field as
// float64 and link fields as []any of record ids.

func applicantFromRecord(rec *airtable.Record) *Applicant {
	a := &Applicant{
		ID:              rec.ID,
		CompressedJSON:  fieldString(rec.Fields, "Compressed JSON"),
		ShortlistStatus: ShortlistStatus(fieldString(rec.Fields, "Shortlist Status")),
		LLMSummary:      fieldString(rec.Fields, "LLM Summary"),
		LLMIssues:       fieldString(rec.Fields, "LLM Issues"),
		LLMFollowUps:    fieldString(rec.Fields, "LLM Follow-Ups"),
	}
	if a.ShortlistStatus == "" {
		a.ShortlistStatus = StatusPending
	}
	if raw, ok := rec.Fields["LLM Score"]; ok {
		if f, ok := raw.(float64); ok {
			score := int(f)
			a.LLMScore = &score
		}
	}
	return a
}

func personalDetailsFromRecord(rec *airtable.Record, applicantID string) *PersonalDetails {
	return &PersonalDetails{
		ID:          rec.ID,
		ApplicantID: applicantID,
		FullName:    fieldString(rec.Fields, "Full Name"),
		Email:       fieldString(rec.Fields, "Email"),
		Location:    fieldString(rec.Fields, "Location"),
		LinkedIn:    fieldString(rec.Fields, "LinkedIn"),
	}
}

func personalDetailsFields(rec PersonalDetails) map[string]any {
	return map[string]any{
		"Applicant ID": []string{rec.ApplicantID},
		"Full Name":    rec.FullName,
		"Email":        rec.Email,
		"Location":     rec.Location,
		"LinkedIn":     rec.LinkedIn,
	}
}

func workExperienceFromRecord(rec *airtable.Record, applicantID string) *WorkExperience {
	return &WorkExperience{
		ID:           rec.ID,
		ApplicantID:  applicantID,
		Company:      fieldString(rec.Fields, "Company"),
		Title:        fieldString(rec.Fields, "Title"),
		StartDate:    fieldString(rec.Fields, "Start Date"),
		EndDate:      fieldString(rec.Fields, "End Date"),
		Technologies: fieldString(rec.Fields, "Technologies"),
		Description:  fieldString(rec.Fields, "Description"),
	}
}

func workExperienceFields(rec WorkExperience) map[string]any {
	return map[string]any{
		"Applicant ID": []string{rec.ApplicantID},
		"Company":      rec.Company,
		"Title":        rec.Title,
		"Start Date":   rec.StartDate,
		"End Date":     rec.EndDate,
		"Technologies": rec.Technologies,
		"Description":  rec.Description,
	}
}

func salaryPreferenceFromRecord(rec *airtable.Record, applicantID string) *SalaryPreference {
	return &SalaryPreference{
		ID:            rec.ID,
		ApplicantID:   applicantID,
		PreferredRate: fieldFloat(rec.Fields, "Preferred Rate"),
		MinimumRate:   fieldFloat(rec.Fields, "Minimum Rate"),
		Currency:      fieldString(rec.Fields, "Currency"),
		Availability:  fieldFloat(rec.Fields, "Availability (hrs/wk)"),
	}
}

func salaryPreferenceFields(rec SalaryPreference) map[string]any {
	return map[string]any{
		"Applicant ID":          []string{rec.ApplicantID},
		"Preferred Rate":        rec.PreferredRate,
		"Minimum Rate":          rec.MinimumRate,
		"Currency":              rec.Currency,
		"Availability (hrs/wk)": rec.Availability,
	}
}

func fieldString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldFloat(fields map[string]any, key string) float64 {
	if v, ok := fields[key].(float64); ok {
		return v
	}
	return 0
}
