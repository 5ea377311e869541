// Package compress aggregates an applicant's linked child records into
// the single compressed JSON document stored on the applicant.
package compress

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcus/applicant-intake/internal/store"
	"github.com/marcus/applicant-intake/internal/types"
)

// dateLayout is the ISO date format used by the intake forms.
const dateLayout = "2006-01-02"

// daysPerYear converts experience durations to fractional years.
const daysPerYear = 365.25

// Compressor builds and persists compressed applicant documents.
type Compressor struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// New creates a Compressor over the given store.
func New(s store.Store, log zerolog.Logger) *Compressor {
	return &Compressor{
		store: s,
		log:   log,
		now:   time.Now,
	}
}

// Compress reads an applicant's child records, builds the compressed
// document, and writes its serialized form onto the applicant record.
// Exactly one write is performed; re-running with unchanged source data
// produces byte-identical output.
func (c *Compressor) Compress(ctx context.Context, applicantID string) (*types.CompressedDocument, error) {
	if _, err := c.store.GetApplicant(ctx, applicantID); err != nil {
		return nil, err
	}

	doc, err := c.Build(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	serialized, err := types.MarshalDocument(doc)
	if err != nil {
		return nil, err
	}

	if err := c.store.SaveCompressedJSON(ctx, applicantID, serialized); err != nil {
		return nil, err
	}

	c.log.Info().Str("applicant_id", applicantID).
		Int("experience_entries", len(doc.Experience)).
		Float64("total_experience_years", doc.TotalExperienceYears).
		Msg("compressed applicant data")

	return doc, nil
}

// Build assembles the document without persisting it. Missing child
// records degrade to empty strings and zeros so downstream consumers
// never see nulls.
func (c *Compressor) Build(ctx context.Context, applicantID string) (*types.CompressedDocument, error) {
	personal, err := c.store.GetPersonalDetails(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	experiences, err := c.store.ListWorkExperience(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	salary, err := c.store.GetSalaryPreference(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	doc := &types.CompressedDocument{
		Experience: make([]types.ExperienceEntry, 0, len(experiences)),
	}

	if personal != nil {
		doc.Personal = types.PersonalInfo{
			Name:     personal.FullName,
			Email:    personal.Email,
			Location: personal.Location,
			LinkedIn: personal.LinkedIn,
		}
	} else {
		c.log.Warn().Str("applicant_id", applicantID).Msg("no personal details found")
	}

	if len(experiences) == 0 {
		c.log.Warn().Str("applicant_id", applicantID).Msg("no work experience found")
	}
	for _, exp := range experiences {
		doc.Experience = append(doc.Experience, types.ExperienceEntry{
			Company:      exp.Company,
			Title:        exp.Title,
			StartDate:    exp.StartDate,
			EndDate:      exp.EndDate,
			Technologies: exp.Technologies,
			Description:  exp.Description,
		})
	}
	doc.TotalExperienceYears = c.totalExperienceYears(applicantID, experiences)

	if salary != nil {
		doc.Salary = types.SalaryInfo{
			PreferredRate: salary.PreferredRate,
			MinimumRate:   salary.MinimumRate,
			Currency:      salary.Currency,
			Availability:  salary.Availability,
		}
	} else {
		c.log.Warn().Str("applicant_id", applicantID).Msg("no salary preferences found")
	}
	if doc.Salary.Currency == "" {
		doc.Salary.Currency = "USD"
	}

	return doc, nil
}

// totalExperienceYears sums per-entry durations in years, rounded to
// one decimal place. An open end date counts up to today. Entries with
// unparseable dates or negative spans contribute zero; they are logged,
// never fatal.
func (c *Compressor) totalExperienceYears(applicantID string, experiences []store.WorkExperience) float64 {
	total := 0.0

	for _, exp := range experiences {
		if exp.StartDate == "" {
			continue
		}

		start, err := time.Parse(dateLayout, exp.StartDate)
		if err != nil {
			c.log.Warn().Str("applicant_id", applicantID).Str("start_date", exp.StartDate).
				Msg("unparseable start date, entry contributes zero")
			continue
		}

		end := c.now()
		if exp.EndDate != "" {
			end, err = time.Parse(dateLayout, exp.EndDate)
			if err != nil {
				c.log.Warn().Str("applicant_id", applicantID).Str("end_date", exp.EndDate).
					Msg("unparseable end date, entry contributes zero")
				continue
			}
		}

		years := end.Sub(start).Hours() / 24 / daysPerYear
		if years < 0 {
			c.log.Warn().Str("applicant_id", applicantID).Str("company", exp.Company).
				Msg("negative experience duration, clamping to zero")
			years = 0
		}
		total += years
	}

	return math.Round(total*10) / 10
}
