// Package store defines the record model for the applicant base and the
// Store interface the pipeline components talk to. Two backends are
// provided: the Airtable REST API (production) and PostgreSQL (local
// mirror), plus an in-memory implementation for tests.
package store

import "context"

// Store is the thin read/write/query surface over the five linked
// collections. Every operation is individually atomic per record; no
// batching or cross-record transactions are assumed.
//
// GetApplicant returns a NotFoundError for an absent id. The one-to-one
// child getters return (nil, nil) when no linked record exists, since
// absence is the normal "create" branch of an upsert, not a failure.
type Store interface {
	// Applicants (root entity; never deleted by this subsystem).
	GetApplicant(ctx context.Context, id string) (*Applicant, error)
	ListApplicants(ctx context.Context) ([]Applicant, error)
	SaveCompressedJSON(ctx context.Context, applicantID, compressed string) error
	SetShortlistStatus(ctx context.Context, applicantID string, status ShortlistStatus) error
	SaveEnrichment(ctx context.Context, applicantID string, fields EnrichmentFields) error

	// Personal details (one-to-one, upserted by the decompressor).
	GetPersonalDetails(ctx context.Context, applicantID string) (*PersonalDetails, error)
	CreatePersonalDetails(ctx context.Context, rec PersonalDetails) (*PersonalDetails, error)
	UpdatePersonalDetails(ctx context.Context, rec PersonalDetails) error

	// Work experience (one-to-many, positionally reconciled).
	ListWorkExperience(ctx context.Context, applicantID string) ([]WorkExperience, error)
	CreateWorkExperience(ctx context.Context, rec WorkExperience) (*WorkExperience, error)
	UpdateWorkExperience(ctx context.Context, rec WorkExperience) error
	DeleteWorkExperience(ctx context.Context, id string) error

	// Salary preferences (one-to-one, upserted by the decompressor).
	GetSalaryPreference(ctx context.Context, applicantID string) (*SalaryPreference, error)
	CreateSalaryPreference(ctx context.Context, rec SalaryPreference) (*SalaryPreference, error)
	UpdateSalaryPreference(ctx context.Context, rec SalaryPreference) error

	// Shortlisted leads (write-only output).
	CreateShortlistedLead(ctx context.Context, lead ShortlistedLead) (*ShortlistedLead, error)
	HasShortlistedLead(ctx context.Context, applicantID string) (bool, error)

	// Close releases any resources held by the backend.
	Close()
}
