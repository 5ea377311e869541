package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr any
	}{
		{
			name:    "empty string",
			raw:     "",
			wantErr: &EmptyDocumentError{},
		},
		{
			name:    "whitespace only",
			raw:     "  \n\t ",
			wantErr: &EmptyDocumentError{},
		},
		{
			name:    "invalid JSON",
			raw:     "{not json",
			wantErr: &MalformedDocumentError{},
		},
		{
			name: "valid document",
			raw:  `{"personal":{"name":"Ada"},"experience":[],"total_experience_years":2.5,"salary":{"currency":"USD"}}`,
		},
		{
			name: "missing keys decode to zero values",
			raw:  `{}`,
		},
		{
			name: "unknown keys tolerated",
			raw:  `{"personal":{"name":"Ada"},"extra_field":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument("rec001", tt.raw)

			switch tt.wantErr.(type) {
			case *EmptyDocumentError:
				var emptyErr *EmptyDocumentError
				require.ErrorAs(t, err, &emptyErr)
				assert.Equal(t, "rec001", emptyErr.ApplicantID)
			case *MalformedDocumentError:
				var malformedErr *MalformedDocumentError
				require.ErrorAs(t, err, &malformedErr)
				assert.Equal(t, "rec001", malformedErr.ApplicantID)
				assert.Error(t, errors.Unwrap(malformedErr), "cause should be preserved")
			default:
				require.NoError(t, err)
				require.NotNil(t, doc)
			}
		})
	}
}

func TestMarshalDocument_Deterministic(t *testing.T) {
	doc := &CompressedDocument{
		Personal: PersonalInfo{Name: "Ada Lovelace", Email: "ada@example.com", Location: "UK"},
		Experience: []ExperienceEntry{
			{Company: "Analytical Engines", Title: "Engineer", StartDate: "2020-01-01", EndDate: "2022-01-01"},
		},
		TotalExperienceYears: 2.0,
		Salary:               SalaryInfo{PreferredRate: 90, MinimumRate: 80, Currency: "USD", Availability: 30},
	}

	first, err := MarshalDocument(doc)
	require.NoError(t, err)
	second, err := MarshalDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second, "repeated marshals must be byte-identical")
}

func TestMarshalDocument_FieldOrder(t *testing.T) {
	doc := &CompressedDocument{}
	out, err := MarshalDocument(doc)
	require.NoError(t, err)

	personalIdx := strings.Index(out, `"personal"`)
	experienceIdx := strings.Index(out, `"experience"`)
	totalIdx := strings.Index(out, `"total_experience_years"`)
	salaryIdx := strings.Index(out, `"salary"`)

	require.NotEqual(t, -1, personalIdx)
	assert.Less(t, personalIdx, experienceIdx, "personal precedes experience")
	assert.Less(t, experienceIdx, totalIdx, "experience precedes total_experience_years")
	assert.Less(t, totalIdx, salaryIdx, "total_experience_years precedes salary")
}

func TestMarshalDocument_NilExperienceBecomesEmptyArray(t *testing.T) {
	doc := &CompressedDocument{}
	out, err := MarshalDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, out, `"experience": []`, "nil experience must serialize as an empty array, not null")
	assert.Nil(t, doc.Experience, "marshaling must not mutate the caller's document")
}

func TestParseDocument_RoundTrip(t *testing.T) {
	doc := &CompressedDocument{
		Personal:             PersonalInfo{Name: "Grace Hopper", Location: "USA"},
		Experience:           []ExperienceEntry{{Company: "Navy", Title: "Rear Admiral", StartDate: "1943-12-01"}},
		TotalExperienceYears: 42.6,
		Salary:               SalaryInfo{PreferredRate: 95, Currency: "USD", Availability: 25},
	}

	out, err := MarshalDocument(doc)
	require.NoError(t, err)

	parsed, err := ParseDocument("rec002", out)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
}
