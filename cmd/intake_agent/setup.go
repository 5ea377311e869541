package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcus/applicant-intake/internal/airtable"
	"github.com/marcus/applicant-intake/internal/config"
	"github.com/marcus/applicant-intake/internal/llm"
	"github.com/marcus/applicant-intake/internal/store"
)

// newLogger builds the console logger. Debug level is gated on the
// persistent --verbose flag.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// openStore builds the configured record store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		return store.ConnectPostgres(ctx, cfg.DatabaseURL)
	case config.BackendAirtable:
		client, err := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID, nil)
		if err != nil {
			return nil, err
		}
		return store.NewAirtableStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

// newLLMClient builds the configured provider client.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	llmCfg := cfg.LLMConfig()
	return llm.NewClient(ctx, &llmCfg, cfg.APIKeyForProvider())
}

// validateTargetFlags enforces the one-of contract between
// --applicant-id and --all.
func validateTargetFlags(applicantID string, all bool) error {
	if applicantID != "" && all {
		return fmt.Errorf("cannot use --applicant-id with --all")
	}
	if applicantID == "" && !all {
		return fmt.Errorf("must provide either --applicant-id or --all")
	}
	return nil
}

// resolveTargets expands the target flags into a list of applicant ids.
func resolveTargets(ctx context.Context, s store.Store, applicantID string, all bool) ([]string, error) {
	if applicantID != "" {
		return []string{applicantID}, nil
	}
	applicants, err := s.ListApplicants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	ids := make([]string, 0, len(applicants))
	for _, a := range applicants {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// forEachTarget runs fn per applicant id. In batch mode failures are
// reported and counted, and the command fails at the end if any
// applicant failed; in single mode the error surfaces directly.
func forEachTarget(ctx context.Context, ids []string, log zerolog.Logger, fn func(ctx context.Context, id string) error) error {
	if len(ids) == 1 {
		return fn(ctx, ids[0])
	}

	failed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, id); err != nil {
			failed++
			log.Error().Err(err).Str("applicant_id", id).Msg("applicant failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d applicants failed", failed, len(ids))
	}
	return nil
}
