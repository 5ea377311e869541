package enrich

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/applicant-intake/internal/llm"
	"github.com/marcus/applicant-intake/internal/store"
	"github.com/marcus/applicant-intake/internal/types"
)

// stubClient returns queued responses and errors in order, repeating
// the last pair once the queue is exhausted.
type stubClient struct {
	responses []string
	errs      []error
	calls     int
}

func (c *stubClient) GenerateContent(_ context.Context, _ string) (string, error) {
	i := c.calls
	c.calls++
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	return c.responses[i], c.errs[i]
}

func (c *stubClient) Close() error { return nil }

func newTestEnricher(s store.Store, client llm.Client, maxRetries int) *Enricher {
	e := New(s, client, maxRetries, zerolog.Nop())
	e.sleep = func(_ context.Context, _ time.Duration) error { return nil }
	return e
}

func seedEnrichable(s *store.MemoryStore) string {
	applicant := s.AddApplicant(store.Applicant{
		CompressedJSON: `{"personal":{"name":"Ada"},"experience":[],"total_experience_years":5,"salary":{}}`,
	})
	return applicant.ID
}

func TestEnrich_WritesFields(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedEnrichable(s)
	client := &stubClient{
		responses: []string{wellFormedResponse},
		errs:      []error{nil},
	}

	e := newTestEnricher(s, client, 3)
	result, err := e.Enrich(context.Background(), id, false)
	require.NoError(t, err)
	require.NotNil(t, result.Score)
	assert.Equal(t, 8, *result.Score)

	applicant, err := s.GetApplicant(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Strong backend engineer with solid cloud experience.", applicant.LLMSummary)
	require.NotNil(t, applicant.LLMScore)
	assert.Equal(t, 8, *applicant.LLMScore)
	assert.Equal(t, "Missing LinkedIn profile, overlapping employment dates", applicant.LLMIssues)
	assert.Equal(t, "- Can you confirm the end date of your last role?\n- Is your rate negotiable for longer engagements?",
		applicant.LLMFollowUps)
}

func TestEnrich_SkipsAlreadyEnriched(t *testing.T) {
	s := store.NewMemoryStore()
	applicant := s.AddApplicant(store.Applicant{
		CompressedJSON: `{"personal":{},"experience":[],"total_experience_years":0,"salary":{}}`,
		LLMSummary:     "previous summary",
	})
	client := &stubClient{responses: []string{wellFormedResponse}, errs: []error{nil}}

	e := newTestEnricher(s, client, 3)
	_, err := e.Enrich(context.Background(), applicant.ID, false)
	assert.ErrorIs(t, err, ErrAlreadyEnriched)
	assert.Zero(t, client.calls, "no LLM call for a skipped applicant")
}

func TestEnrich_ForceReruns(t *testing.T) {
	s := store.NewMemoryStore()
	applicant := s.AddApplicant(store.Applicant{
		CompressedJSON: `{"personal":{},"experience":[],"total_experience_years":0,"salary":{}}`,
		LLMSummary:     "previous summary",
	})
	client := &stubClient{responses: []string{wellFormedResponse}, errs: []error{nil}}

	e := newTestEnricher(s, client, 3)
	_, err := e.Enrich(context.Background(), applicant.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)

	updated, err := s.GetApplicant(context.Background(), applicant.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "previous summary", updated.LLMSummary)
}

func TestEnrich_EmptyDocument(t *testing.T) {
	s := store.NewMemoryStore()
	applicant := s.AddApplicant(store.Applicant{})
	client := &stubClient{responses: []string{""}, errs: []error{nil}}

	e := newTestEnricher(s, client, 3)
	_, err := e.Enrich(context.Background(), applicant.ID, false)

	var emptyErr *types.EmptyDocumentError
	require.ErrorAs(t, err, &emptyErr)
	assert.Zero(t, client.calls)
}

func TestEnrich_RetriesTransportErrors(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedEnrichable(s)
	transient := &llm.TransportError{Provider: llm.ProviderGemini, Cause: fmt.Errorf("rate limited")}
	client := &stubClient{
		responses: []string{"", "", wellFormedResponse},
		errs:      []error{transient, transient, nil},
	}

	e := newTestEnricher(s, client, 3)
	result, err := e.Enrich(context.Background(), id, false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 3, client.calls, "two failures then a success")
}

func TestEnrich_ExhaustsRetries(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedEnrichable(s)
	transient := &llm.TransportError{Provider: llm.ProviderGemini, Cause: fmt.Errorf("rate limited")}
	client := &stubClient{responses: []string{""}, errs: []error{transient}}

	e := newTestEnricher(s, client, 3)
	_, err := e.Enrich(context.Background(), id, false)

	var transportErr *llm.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 3, client.calls, "attempts are bounded by maxRetries")

	applicant, getErr := s.GetApplicant(context.Background(), id)
	require.NoError(t, getErr)
	assert.Empty(t, applicant.LLMSummary, "nothing is written when every attempt fails")
}

func TestEnrich_NonTransportErrorNotRetried(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedEnrichable(s)
	client := &stubClient{responses: []string{""}, errs: []error{errors.New("invalid request")}}

	e := newTestEnricher(s, client, 3)
	_, err := e.Enrich(context.Background(), id, false)
	require.Error(t, err)
	assert.Equal(t, 1, client.calls, "only transport errors are retried")
}

func TestEnrich_ParseFailureNotPersisted(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedEnrichable(s)
	client := &stubClient{responses: []string{"totally unstructured reply"}, errs: []error{nil}}

	e := newTestEnricher(s, client, 3)
	_, err := e.Enrich(context.Background(), id, false)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, client.calls, "parse failures are not retried")

	applicant, getErr := s.GetApplicant(context.Background(), id)
	require.NoError(t, getErr)
	assert.Empty(t, applicant.LLMSummary)
}

func TestEnrich_NilScorePersistsAsNil(t *testing.T) {
	s := store.NewMemoryStore()
	id := seedEnrichable(s)
	client := &stubClient{
		responses: []string{"Summary: Fine.\nScore: 42\nIssues: None"},
		errs:      []error{nil},
	}

	e := newTestEnricher(s, client, 3)
	result, err := e.Enrich(context.Background(), id, false)
	require.NoError(t, err)
	assert.Nil(t, result.Score)

	applicant, getErr := s.GetApplicant(context.Background(), id)
	require.NoError(t, getErr)
	assert.Nil(t, applicant.LLMScore, "out-of-range scores persist as absent, never coerced")
	assert.Equal(t, "Fine.", applicant.LLMSummary)
}
