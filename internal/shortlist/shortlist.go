// Package shortlist evaluates compressed applicant documents against
// the rule-based shortlisting criteria and records the outcome.
//
// Matching policy: location and tier-1 company checks are
// case-insensitive substring matches (an approved location "Canada"
// matches "Toronto, Canada"; tier-1 "Google" matches "Google LLC").
package shortlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marcus/applicant-intake/internal/store"
	"github.com/marcus/applicant-intake/internal/types"
)

// Criteria are the configurable inputs to the rule set. They are passed
// in explicitly so evaluation stays pure and testable.
type Criteria struct {
	MinYears          float64
	Tier1Companies    []string
	MaxHourlyRate     float64
	MinAvailability   float64
	ApprovedLocations []string
}

// DefaultCriteria returns the standard contractor shortlisting rules.
func DefaultCriteria() Criteria {
	return Criteria{
		MinYears:        4,
		Tier1Companies:  []string{"Google", "Meta", "OpenAI", "Microsoft", "Amazon", "Apple", "Netflix", "Anthropic"},
		MaxHourlyRate:   100,
		MinAvailability: 20,
		ApprovedLocations: []string{
			"US", "USA", "United States", "Canada", "UK", "United Kingdom", "Germany", "India",
		},
	}
}

// CriterionResult is the outcome of one sub-criterion.
type CriterionResult struct {
	Name   string
	Passed bool
	Reason string
}

// Outcome is the overall evaluation result. Passed is the logical AND
// of the three criteria.
type Outcome struct {
	Passed   bool
	Criteria []CriterionResult
}

// Reasoning renders the per-criterion reasons as a human-readable
// block, one line per criterion.
func (o Outcome) Reasoning() string {
	lines := make([]string, 0, len(o.Criteria))
	for _, c := range o.Criteria {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, c.Reason))
	}
	return strings.Join(lines, "\n")
}

// Evaluate applies the three-factor rule set to a document. It is pure:
// no store access, no side effects. Missing or zero-valued data fails
// the owning criterion rather than erroring.
func Evaluate(doc *types.CompressedDocument, criteria Criteria) Outcome {
	results := []CriterionResult{
		checkExperience(doc, criteria),
		checkCompensation(doc, criteria),
		checkLocation(doc, criteria),
	}

	passed := true
	for _, r := range results {
		passed = passed && r.Passed
	}

	return Outcome{Passed: passed, Criteria: results}
}

// checkExperience passes on total years meeting the minimum, or on any
// entry's company matching the tier-1 set.
func checkExperience(doc *types.CompressedDocument, criteria Criteria) CriterionResult {
	result := CriterionResult{Name: "Experience"}

	if doc.TotalExperienceYears >= criteria.MinYears {
		result.Passed = true
		result.Reason = fmt.Sprintf("%.1f years total experience (>= %.1f required)",
			doc.TotalExperienceYears, criteria.MinYears)
		return result
	}

	var tier1Matches []string
	for _, exp := range doc.Experience {
		company := strings.TrimSpace(exp.Company)
		if company == "" {
			continue
		}
		for _, tier1 := range criteria.Tier1Companies {
			if containsFold(company, tier1) {
				tier1Matches = append(tier1Matches, company)
				break
			}
		}
	}

	if len(tier1Matches) > 0 {
		result.Passed = true
		result.Reason = fmt.Sprintf("worked at tier-1 company: %s", strings.Join(dedupe(tier1Matches), ", "))
		return result
	}

	result.Reason = fmt.Sprintf("only %.1f years total experience and no tier-1 company", doc.TotalExperienceYears)
	return result
}

// checkCompensation requires a stated rate within the cap and enough
// weekly availability. A missing salary section yields zeros, which
// fail here: fail-closed, never a crash.
func checkCompensation(doc *types.CompressedDocument, criteria Criteria) CriterionResult {
	result := CriterionResult{Name: "Compensation"}
	salary := doc.Salary

	var failures []string
	if salary.PreferredRate <= 0 {
		failures = append(failures, "no preferred rate provided")
	} else if salary.PreferredRate > criteria.MaxHourlyRate {
		failures = append(failures, fmt.Sprintf("rate $%.0f/hr exceeds max $%.0f/hr",
			salary.PreferredRate, criteria.MaxHourlyRate))
	}
	if salary.Availability < criteria.MinAvailability {
		failures = append(failures, fmt.Sprintf("availability %.0f hrs/wk below min %.0f hrs/wk",
			salary.Availability, criteria.MinAvailability))
	}

	if len(failures) > 0 {
		result.Reason = strings.Join(failures, "; ")
		return result
	}

	result.Passed = true
	result.Reason = fmt.Sprintf("rate $%.0f/hr within $%.0f/hr cap and %.0f hrs/wk available",
		salary.PreferredRate, criteria.MaxHourlyRate, salary.Availability)
	return result
}

func checkLocation(doc *types.CompressedDocument, criteria Criteria) CriterionResult {
	result := CriterionResult{Name: "Location"}
	location := strings.TrimSpace(doc.Personal.Location)

	if location == "" {
		result.Reason = "no location provided"
		return result
	}

	for _, approved := range criteria.ApprovedLocations {
		if containsFold(location, approved) {
			result.Passed = true
			result.Reason = fmt.Sprintf("approved location: %s", location)
			return result
		}
	}

	result.Reason = fmt.Sprintf("location %q is not approved", location)
	return result
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Evaluator fetches documents, evaluates them, and records outcomes.
type Evaluator struct {
	store    store.Store
	criteria Criteria
	log      zerolog.Logger
}

// NewEvaluator creates an Evaluator with the given criteria.
func NewEvaluator(s store.Store, criteria Criteria, log zerolog.Logger) *Evaluator {
	return &Evaluator{store: s, criteria: criteria, log: log}
}

// Process evaluates one applicant and writes the result back: status
// Shortlisted plus a lead record on pass, status Rejected on fail.
// Re-evaluating an already-shortlisted applicant rewrites the status
// but skips creating a duplicate lead.
func (e *Evaluator) Process(ctx context.Context, applicantID string) (*Outcome, error) {
	applicant, err := e.store.GetApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	doc, err := types.ParseDocument(applicantID, applicant.CompressedJSON)
	if err != nil {
		return nil, err
	}

	outcome := Evaluate(doc, e.criteria)

	if !outcome.Passed {
		if err := e.store.SetShortlistStatus(ctx, applicantID, store.StatusRejected); err != nil {
			return nil, err
		}
		e.log.Info().Str("applicant_id", applicantID).Str("reasoning", outcome.Reasoning()).
			Msg("applicant rejected")
		return &outcome, nil
	}

	if err := e.store.SetShortlistStatus(ctx, applicantID, store.StatusShortlisted); err != nil {
		return nil, err
	}

	exists, err := e.store.HasShortlistedLead(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if exists {
		e.log.Info().Str("applicant_id", applicantID).Msg("applicant already has a shortlisted lead")
		return &outcome, nil
	}

	lead := store.ShortlistedLead{
		ApplicantID:    applicantID,
		CompressedJSON: applicant.CompressedJSON,
		ScoreReason:    outcome.Reasoning(),
	}
	if _, err := e.store.CreateShortlistedLead(ctx, lead); err != nil {
		return nil, err
	}

	e.log.Info().Str("applicant_id", applicantID).Msg("applicant shortlisted")
	return &outcome, nil
}
