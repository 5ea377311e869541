package compress

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/applicant-intake/internal/store"
	"github.com/marcus/applicant-intake/internal/types"
)

func newTestCompressor(s store.Store) *Compressor {
	c := New(s, zerolog.Nop())
	c.now = func() time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return c
}

func seedApplicant(t *testing.T, s *store.MemoryStore) string {
	t.Helper()
	applicant := s.AddApplicant(store.Applicant{})
	return applicant.ID
}

func TestTotalExperienceYears(t *testing.T) {
	tests := []struct {
		name        string
		experiences []store.WorkExperience
		want        float64
	}{
		{
			name: "closed interval",
			experiences: []store.WorkExperience{
				{StartDate: "2020-01-01", EndDate: "2022-01-01"},
			},
			want: 2.0,
		},
		{
			name: "open interval counts up to today",
			experiences: []store.WorkExperience{
				{StartDate: "2024-01-01", EndDate: ""},
			},
			want: 2.0,
		},
		{
			name: "entries sum across jobs",
			experiences: []store.WorkExperience{
				{StartDate: "2018-01-01", EndDate: "2020-01-01"},
				{StartDate: "2020-06-01", EndDate: "2023-06-01"},
			},
			want: 5.0,
		},
		{
			name: "negative span clamps to zero",
			experiences: []store.WorkExperience{
				{StartDate: "2022-01-01", EndDate: "2020-01-01"},
				{StartDate: "2020-01-01", EndDate: "2021-01-01"},
			},
			want: 1.0,
		},
		{
			name: "unparseable start date contributes zero",
			experiences: []store.WorkExperience{
				{StartDate: "January 2020", EndDate: "2022-01-01"},
				{StartDate: "2020-01-01", EndDate: "2021-01-01"},
			},
			want: 1.0,
		},
		{
			name: "unparseable end date contributes zero",
			experiences: []store.WorkExperience{
				{StartDate: "2020-01-01", EndDate: "soon"},
			},
			want: 0.0,
		},
		{
			name: "missing start date skipped",
			experiences: []store.WorkExperience{
				{StartDate: "", EndDate: "2022-01-01"},
			},
			want: 0.0,
		},
		{
			name:        "no experience",
			experiences: nil,
			want:        0.0,
		},
		{
			name: "rounded to one decimal",
			experiences: []store.WorkExperience{
				{StartDate: "2020-01-01", EndDate: "2020-05-01"},
			},
			want: 0.3,
		},
	}

	c := newTestCompressor(store.NewMemoryStore())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.totalExperienceYears("rec001", tt.experiences)
			assert.InDelta(t, tt.want, got, 0.051)
		})
	}
}

func TestCompress_WritesDocument(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedApplicant(t, s)
	ctx := context.Background()

	_, err := s.CreatePersonalDetails(ctx, store.PersonalDetails{
		ApplicantID: id, FullName: "Ada Lovelace", Email: "ada@example.com", Location: "UK",
	})
	require.NoError(t, err)
	_, err = s.CreateWorkExperience(ctx, store.WorkExperience{
		ApplicantID: id, Company: "Analytical Engines", Title: "Engineer",
		StartDate: "2020-01-01", EndDate: "2024-01-01",
	})
	require.NoError(t, err)
	_, err = s.CreateSalaryPreference(ctx, store.SalaryPreference{
		ApplicantID: id, PreferredRate: 90, MinimumRate: 75, Currency: "GBP", Availability: 30,
	})
	require.NoError(t, err)

	c := newTestCompressor(s)
	doc, err := c.Compress(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", doc.Personal.Name)
	require.Len(t, doc.Experience, 1)
	assert.Equal(t, "Analytical Engines", doc.Experience[0].Company)
	assert.InDelta(t, 4.0, doc.TotalExperienceYears, 0.01)
	assert.Equal(t, "GBP", doc.Salary.Currency)

	applicant, err := s.GetApplicant(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, applicant.CompressedJSON)

	parsed, err := types.ParseDocument(id, applicant.CompressedJSON)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed, "stored document must round-trip to the built document")
}

func TestCompress_Idempotent(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedApplicant(t, s)
	ctx := context.Background()

	_, err := s.CreateWorkExperience(ctx, store.WorkExperience{
		ApplicantID: id, Company: "Google", StartDate: "2019-03-01", EndDate: "2023-03-01",
	})
	require.NoError(t, err)

	c := newTestCompressor(s)

	_, err = c.Compress(ctx, id)
	require.NoError(t, err)
	first, err := s.GetApplicant(ctx, id)
	require.NoError(t, err)

	_, err = c.Compress(ctx, id)
	require.NoError(t, err)
	second, err := s.GetApplicant(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, first.CompressedJSON, second.CompressedJSON,
		"unchanged source data must produce byte-identical output")
}

func TestCompress_MissingChildrenDefaults(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedApplicant(t, s)

	c := newTestCompressor(s)
	doc, err := c.Compress(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, types.PersonalInfo{}, doc.Personal, "missing personal details become empty strings")
	assert.Empty(t, doc.Experience)
	assert.Zero(t, doc.TotalExperienceYears)
	assert.Equal(t, "USD", doc.Salary.Currency, "missing salary defaults currency to USD")
	assert.Zero(t, doc.Salary.PreferredRate)
}

func TestCompress_UnknownApplicant(t *testing.T) {
	s := store.NewMemoryStore()
	c := newTestCompressor(s)

	_, err := c.Compress(context.Background(), "recMISSING")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err), "unknown applicant must surface a not-found error")
}
