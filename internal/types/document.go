// Package types defines the shared data structures passed between the
// intake pipeline stages.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CompressedDocument is the single JSON object stored on an applicant
// record. It aggregates the three child tables plus one derived field.
// Field order here fixes the serialized key order, which keeps repeated
// compressions byte-identical for unchanged source data.
type CompressedDocument struct {
	Personal             PersonalInfo      `json:"personal"`
	Experience           []ExperienceEntry `json:"experience"`
	TotalExperienceYears float64           `json:"total_experience_years"`
	Salary               SalaryInfo        `json:"salary"`
}

// PersonalInfo mirrors the Personal Details table. Missing source
// fields are carried as empty strings, never null.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
}

// ExperienceEntry mirrors one Work Experience row. Dates are ISO
// strings (YYYY-MM-DD); an empty end date means a current position.
type ExperienceEntry struct {
	Company      string `json:"company"`
	Title        string `json:"title"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Technologies string `json:"technologies"`
	Description  string `json:"description"`
}

// SalaryInfo mirrors the Salary Preferences table.
type SalaryInfo struct {
	PreferredRate float64 `json:"preferred_rate"`
	MinimumRate   float64 `json:"minimum_rate"`
	Currency      string  `json:"currency"`
	Availability  float64 `json:"availability"`
}

// EmptyDocumentError indicates an applicant whose compressed-document
// field is blank, so there is nothing to decompress or evaluate.
type EmptyDocumentError struct {
	ApplicantID string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("applicant %s has no compressed document", e.ApplicantID)
}

// MalformedDocumentError indicates a compressed-document field that
// could not be parsed. It is terminal for the call: nothing is applied.
type MalformedDocumentError struct {
	ApplicantID string
	Cause       error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed compressed document for applicant %s: %v", e.ApplicantID, e.Cause)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// ParseDocument decodes a compressed-document string. Unknown keys are
// tolerated; missing keys decode to zero values so downstream readers
// need no null checks.
func ParseDocument(applicantID, raw string) (*CompressedDocument, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &EmptyDocumentError{ApplicantID: applicantID}
	}

	var doc CompressedDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &MalformedDocumentError{ApplicantID: applicantID, Cause: err}
	}

	return &doc, nil
}

// MarshalDocument serializes a compressed document with the fixed field
// order and two-space indentation used by the compressor. The output is
// deterministic for identical input. The argument is left untouched; a
// nil experience list is normalized on a local copy only.
func MarshalDocument(doc *CompressedDocument) (string, error) {
	out := *doc
	if out.Experience == nil {
		out.Experience = []ExperienceEntry{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal compressed document: %w", err)
	}
	return string(data), nil
}
