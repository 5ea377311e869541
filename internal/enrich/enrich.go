// Package enrich sends compressed applicant documents to the LLM
// evaluation capability and writes the parsed four-field result back
// onto the applicant record.
package enrich

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcus/applicant-intake/internal/llm"
	"github.com/marcus/applicant-intake/internal/store"
	"github.com/marcus/applicant-intake/internal/types"
)

// ErrAlreadyEnriched is returned when an applicant already has an LLM
// summary and force was not set.
var ErrAlreadyEnriched = errors.New("applicant already enriched")

// DefaultMaxRetries bounds the LLM call retry loop.
const DefaultMaxRetries = 3

// Enricher runs the LLM evaluation for applicants.
type Enricher struct {
	store      store.Store
	client     llm.Client
	maxRetries int
	log        zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates an Enricher. maxRetries <= 0 uses DefaultMaxRetries.
func New(s store.Store, client llm.Client, maxRetries int, log zerolog.Logger) *Enricher {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Enricher{
		store:      s,
		client:     client,
		maxRetries: maxRetries,
		log:        log,
		sleep:      sleepCtx,
	}
}

// Enrich evaluates one applicant. Already-enriched applicants are
// skipped with ErrAlreadyEnriched unless force is set. Transport
// failures are retried with exponential backoff up to the configured
// attempt count; every other failure surfaces immediately.
func (e *Enricher) Enrich(ctx context.Context, applicantID string, force bool) (*Result, error) {
	applicant, err := e.store.GetApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	if applicant.CompressedJSON == "" {
		return nil, &types.EmptyDocumentError{ApplicantID: applicantID}
	}

	if !force && applicant.LLMSummary != "" {
		return nil, ErrAlreadyEnriched
	}

	prompt := BuildPrompt(applicant.CompressedJSON)

	raw, err := e.generateWithRetry(ctx, applicantID, prompt)
	if err != nil {
		return nil, err
	}

	result, err := ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	if result.Score == nil {
		e.log.Warn().Str("applicant_id", applicantID).
			Msg("enrichment response had no usable score in [1,10]")
	}

	fields := store.EnrichmentFields{
		Summary:   result.Summary,
		Score:     result.Score,
		Issues:    strings.Join(result.Issues, ", "),
		FollowUps: formatFollowUps(result.FollowUps),
	}
	if err := e.store.SaveEnrichment(ctx, applicantID, fields); err != nil {
		return nil, err
	}

	e.log.Info().Str("applicant_id", applicantID).Msg("enriched applicant")
	return result, nil
}

// generateWithRetry calls the LLM, retrying transport failures with
// exponential backoff (1s, 2s, 4s, ...). Store writes are never
// retried; this loop covers only the provider call.
func (e *Enricher) generateWithRetry(ctx context.Context, applicantID, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		raw, err := e.client.GenerateContent(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var transportErr *llm.TransportError
		if !errors.As(err, &transportErr) {
			return "", err
		}

		if attempt < e.maxRetries-1 {
			wait := time.Duration(1<<uint(attempt)) * time.Second
			e.log.Warn().Err(err).Str("applicant_id", applicantID).
				Dur("retry_in", wait).Int("attempt", attempt+1).
				Msg("LLM call failed, retrying")
			if err := e.sleep(ctx, wait); err != nil {
				return "", err
			}
		}
	}

	e.log.Error().Err(lastErr).Str("applicant_id", applicantID).
		Int("attempts", e.maxRetries).Msg("all LLM call attempts failed")
	return "", lastErr
}

func formatFollowUps(followUps []string) string {
	if len(followUps) == 0 {
		return ""
	}
	lines := make([]string, 0, len(followUps))
	for _, q := range followUps {
		lines = append(lines, "- "+q)
	}
	return strings.Join(lines, "\n")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
