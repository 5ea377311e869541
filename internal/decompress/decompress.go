// Package decompress applies an applicant's compressed JSON document
// back onto the normalized child tables, making the JSON the
// authoritative source after human edits.
package decompress

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/marcus/applicant-intake/internal/schemas"
	"github.com/marcus/applicant-intake/internal/store"
	"github.com/marcus/applicant-intake/internal/types"
)

// CollectionCounts records the mutations applied to one child table.
type CollectionCounts struct {
	Created int
	Updated int
	Deleted int
}

// Result reports what a decompression applied, per collection. A nil
// step error means that sub-step succeeded; sub-steps are independent,
// so any combination can fail while the others apply.
type Result struct {
	Personal   CollectionCounts
	Experience CollectionCounts
	Salary     CollectionCounts

	PersonalErr   error
	ExperienceErr error
	SalaryErr     error
}

// Err combines the sub-step failures; nil when all three succeeded.
func (r *Result) Err() error {
	return errors.Join(r.PersonalErr, r.ExperienceErr, r.SalaryErr)
}

// Decompressor restores normalized child records from the document.
type Decompressor struct {
	store store.Store
	log   zerolog.Logger
}

// New creates a Decompressor over the given store.
func New(s store.Store, log zerolog.Logger) *Decompressor {
	return &Decompressor{store: s, log: log}
}

// Decompress parses the applicant's compressed document and reconciles
// the three child tables against it. Parse and structural failures are
// terminal: nothing is applied. After parsing, the three sub-steps run
// independently; the returned Result carries their counts and errors,
// and the second return value is non-nil unless all three succeeded.
func (d *Decompressor) Decompress(ctx context.Context, applicantID string) (*Result, error) {
	applicant, err := d.store.GetApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	if err := validateDocument(applicant); err != nil {
		return nil, err
	}

	doc, err := types.ParseDocument(applicantID, applicant.CompressedJSON)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	result.Personal, result.PersonalErr = d.upsertPersonal(ctx, applicantID, doc.Personal)
	if result.PersonalErr != nil {
		d.log.Error().Err(result.PersonalErr).Str("applicant_id", applicantID).
			Msg("failed to upsert personal details")
	}

	result.Experience, result.ExperienceErr = d.reconcileExperience(ctx, applicantID, doc.Experience)
	if result.ExperienceErr != nil {
		d.log.Error().Err(result.ExperienceErr).Str("applicant_id", applicantID).
			Msg("failed to reconcile work experience")
	}

	result.Salary, result.SalaryErr = d.upsertSalary(ctx, applicantID, doc.Salary)
	if result.SalaryErr != nil {
		d.log.Error().Err(result.SalaryErr).Str("applicant_id", applicantID).
			Msg("failed to upsert salary preferences")
	}

	if err := result.Err(); err != nil {
		return result, err
	}

	d.log.Info().Str("applicant_id", applicantID).
		Int("experience_created", result.Experience.Created).
		Int("experience_updated", result.Experience.Updated).
		Int("experience_deleted", result.Experience.Deleted).
		Msg("decompressed applicant data")

	return result, nil
}

// validateDocument runs the structural schema check on the raw field.
// Type violations count as a malformed document; an inability to run
// the check at all falls through to the JSON parser.
func validateDocument(applicant *store.Applicant) error {
	if applicant.CompressedJSON == "" {
		return &types.EmptyDocumentError{ApplicantID: applicant.ID}
	}

	err := schemas.ValidateDocument(applicant.CompressedJSON)
	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		return &types.MalformedDocumentError{ApplicantID: applicant.ID, Cause: validationErr}
	}
	return nil
}

// upsertPersonal applies full-replace semantics: fields absent from the
// JSON overwrite with empty strings. This is what makes the document
// authoritative after editing, so it must not degrade to patch
// semantics.
func (d *Decompressor) upsertPersonal(ctx context.Context, applicantID string, personal types.PersonalInfo) (CollectionCounts, error) {
	var counts CollectionCounts

	existing, err := d.store.GetPersonalDetails(ctx, applicantID)
	if err != nil {
		return counts, err
	}

	rec := store.PersonalDetails{
		ApplicantID: applicantID,
		FullName:    personal.Name,
		Email:       personal.Email,
		Location:    personal.Location,
		LinkedIn:    personal.LinkedIn,
	}

	if existing != nil {
		rec.ID = existing.ID
		if err := d.store.UpdatePersonalDetails(ctx, rec); err != nil {
			return counts, err
		}
		counts.Updated++
		return counts, nil
	}

	if _, err := d.store.CreatePersonalDetails(ctx, rec); err != nil {
		return counts, err
	}
	counts.Created++
	return counts, nil
}

// reconcileExperience positionally matches the JSON array against the
// existing rows, in the same listing order compression used: overlapping
// indexes update, array overflow creates, row overflow deletes. Matching
// is by index, not identity, so reordering entries is indistinguishable
// from editing them in place.
func (d *Decompressor) reconcileExperience(ctx context.Context, applicantID string, entries []types.ExperienceEntry) (CollectionCounts, error) {
	var counts CollectionCounts

	existing, err := d.store.ListWorkExperience(ctx, applicantID)
	if err != nil {
		return counts, err
	}

	for i, entry := range entries {
		rec := store.WorkExperience{
			ApplicantID:  applicantID,
			Company:      entry.Company,
			Title:        entry.Title,
			StartDate:    entry.StartDate,
			EndDate:      entry.EndDate,
			Technologies: entry.Technologies,
			Description:  entry.Description,
		}

		if i < len(existing) {
			rec.ID = existing[i].ID
			if err := d.store.UpdateWorkExperience(ctx, rec); err != nil {
				return counts, err
			}
			counts.Updated++
		} else {
			if _, err := d.store.CreateWorkExperience(ctx, rec); err != nil {
				return counts, err
			}
			counts.Created++
		}
	}

	for i := len(entries); i < len(existing); i++ {
		if err := d.store.DeleteWorkExperience(ctx, existing[i].ID); err != nil {
			return counts, err
		}
		counts.Deleted++
	}

	return counts, nil
}

func (d *Decompressor) upsertSalary(ctx context.Context, applicantID string, salary types.SalaryInfo) (CollectionCounts, error) {
	var counts CollectionCounts

	existing, err := d.store.GetSalaryPreference(ctx, applicantID)
	if err != nil {
		return counts, err
	}

	currency := salary.Currency
	if currency == "" {
		currency = "USD"
	}

	rec := store.SalaryPreference{
		ApplicantID:   applicantID,
		PreferredRate: salary.PreferredRate,
		MinimumRate:   salary.MinimumRate,
		Currency:      currency,
		Availability:  salary.Availability,
	}

	if existing != nil {
		rec.ID = existing.ID
		if err := d.store.UpdateSalaryPreference(ctx, rec); err != nil {
			return counts, err
		}
		counts.Updated++
		return counts, nil
	}

	if _, err := d.store.CreateSalaryPreference(ctx, rec); err != nil {
		return counts, err
	}
	counts.Created++
	return counts, nil
}
