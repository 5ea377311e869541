// Package pipeline orchestrates the full per-applicant flow: compress,
// shortlist, enrich. Applicants are processed strictly sequentially;
// one applicant's failure never aborts a batch.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marcus/applicant-intake/internal/compress"
	"github.com/marcus/applicant-intake/internal/enrich"
	"github.com/marcus/applicant-intake/internal/shortlist"
	"github.com/marcus/applicant-intake/internal/store"
)

// Options tunes a pipeline run.
type Options struct {
	// ForceLLM re-runs enrichment even for already-enriched applicants.
	ForceLLM bool
	// Delay is an optional pause between applicants in a batch run,
	// to stay under external rate limits.
	Delay time.Duration
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
}

// Runner wires the three stages together over one store.
type Runner struct {
	store    store.Store
	compress *compress.Compressor
	evaluate *shortlist.Evaluator
	enrich   *enrich.Enricher
	log      zerolog.Logger
}

// New creates a Runner from already-constructed stage components.
func New(s store.Store, c *compress.Compressor, e *shortlist.Evaluator, en *enrich.Enricher, log zerolog.Logger) *Runner {
	return &Runner{store: s, compress: c, evaluate: e, enrich: en, log: log}
}

// RunOne processes a single applicant through all three stages. The
// stages run in order and the first failure stops the applicant: a
// shortlist evaluation of stale data or an enrichment of an empty
// document would be worse than no result.
func (r *Runner) RunOne(ctx context.Context, applicantID string, opts Options) error {
	if _, err := r.compress.Compress(ctx, applicantID); err != nil {
		return err
	}

	if _, err := r.evaluate.Process(ctx, applicantID); err != nil {
		return err
	}

	_, err := r.enrich.Enrich(ctx, applicantID, opts.ForceLLM)
	if errors.Is(err, enrich.ErrAlreadyEnriched) {
		r.log.Info().Str("applicant_id", applicantID).Msg("skipping enrichment, already enriched")
		return nil
	}
	return err
}

// RunAll processes every applicant in the store. Failures are logged
// and counted, never fatal to the batch; only context cancellation
// stops the loop early.
func (r *Runner) RunAll(ctx context.Context, opts Options) (*Summary, error) {
	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()

	applicants, err := r.store.ListApplicants(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().Int("applicants", len(applicants)).Msg("starting batch run")

	summary := &Summary{}
	for i, applicant := range applicants {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if i > 0 && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}

		summary.Processed++
		if err := r.RunOne(ctx, applicant.ID, opts); err != nil {
			summary.Failed++
			log.Error().Err(err).Str("applicant_id", applicant.ID).Msg("applicant failed")
			continue
		}
		summary.Succeeded++
	}

	log.Info().Int("processed", summary.Processed).Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).Msg("batch run complete")
	return summary, nil
}
