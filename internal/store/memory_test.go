package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ApplicantLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	applicant := s.AddApplicant(Applicant{})
	assert.NotEmpty(t, applicant.ID)
	assert.Equal(t, StatusPending, applicant.ShortlistStatus)

	got, err := s.GetApplicant(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, applicant.ID, got.ID)

	require.NoError(t, s.SaveCompressedJSON(ctx, applicant.ID, `{"personal":{}}`))
	require.NoError(t, s.SetShortlistStatus(ctx, applicant.ID, StatusShortlisted))

	score := 9
	require.NoError(t, s.SaveEnrichment(ctx, applicant.ID, EnrichmentFields{
		Summary: "Great", Score: &score, Issues: "None", FollowUps: "- Q",
	}))

	got, err = s.GetApplicant(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, `{"personal":{}}`, got.CompressedJSON)
	assert.Equal(t, StatusShortlisted, got.ShortlistStatus)
	require.NotNil(t, got.LLMScore)
	assert.Equal(t, 9, *got.LLMScore)
}

func TestMemoryStore_GetApplicant_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetApplicant(context.Background(), "recMISSING")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemoryStore_ListApplicants_InsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	first := s.AddApplicant(Applicant{})
	second := s.AddApplicant(Applicant{})

	applicants, err := s.ListApplicants(context.Background())
	require.NoError(t, err)
	require.Len(t, applicants, 2)
	assert.Equal(t, first.ID, applicants[0].ID)
	assert.Equal(t, second.ID, applicants[1].ID)
}

func TestMemoryStore_WorkExperienceOrderAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	applicant := s.AddApplicant(Applicant{})

	a, err := s.CreateWorkExperience(ctx, WorkExperience{ApplicantID: applicant.ID, Company: "First"})
	require.NoError(t, err)
	b, err := s.CreateWorkExperience(ctx, WorkExperience{ApplicantID: applicant.ID, Company: "Second"})
	require.NoError(t, err)

	experiences, err := s.ListWorkExperience(ctx, applicant.ID)
	require.NoError(t, err)
	require.Len(t, experiences, 2)
	assert.Equal(t, "First", experiences[0].Company, "listing preserves creation order")

	require.NoError(t, s.UpdateWorkExperience(ctx, WorkExperience{
		ID: a.ID, ApplicantID: applicant.ID, Company: "First Updated",
	}))
	require.NoError(t, s.DeleteWorkExperience(ctx, b.ID))

	experiences, err = s.ListWorkExperience(ctx, applicant.ID)
	require.NoError(t, err)
	require.Len(t, experiences, 1)
	assert.Equal(t, "First Updated", experiences[0].Company)

	err = s.DeleteWorkExperience(ctx, b.ID)
	var writeErr *WriteError
	assert.ErrorAs(t, err, &writeErr, "deleting a deleted row fails")
}

func TestMemoryStore_OneToOneGetters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	applicant := s.AddApplicant(Applicant{})

	personal, err := s.GetPersonalDetails(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Nil(t, personal, "absent one-to-one record is nil without error")

	created, err := s.CreatePersonalDetails(ctx, PersonalDetails{ApplicantID: applicant.ID, FullName: "Ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	personal, err = s.GetPersonalDetails(ctx, applicant.ID)
	require.NoError(t, err)
	require.NotNil(t, personal)
	assert.Equal(t, "Ada", personal.FullName)

	created.FullName = "Ada Lovelace"
	require.NoError(t, s.UpdatePersonalDetails(ctx, *created))

	personal, err = s.GetPersonalDetails(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", personal.FullName)
}

func TestMemoryStore_Leads(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	applicant := s.AddApplicant(Applicant{})

	has, err := s.HasShortlistedLead(ctx, applicant.ID)
	require.NoError(t, err)
	assert.False(t, has)

	lead, err := s.CreateShortlistedLead(ctx, ShortlistedLead{ApplicantID: applicant.ID, ScoreReason: "passed"})
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.False(t, lead.CreatedAt.IsZero())

	has, err = s.HasShortlistedLead(ctx, applicant.ID)
	require.NoError(t, err)
	assert.True(t, has)
	assert.Len(t, s.Leads(), 1)
}
