package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/applicant-intake/internal/config"
	"github.com/marcus/applicant-intake/internal/enrich"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Evaluate applicants with the LLM and store the results",
	Long:  "Send the applicant's compressed JSON document to the configured LLM provider and write the summary, score, issues, and follow-up questions back to the applicant record.",
	RunE:  runEnrich,
}

var (
	enrichApplicantID string
	enrichAll         bool
	enrichForce       bool
)

func init() {
	enrichCmd.Flags().StringVar(&enrichApplicantID, "applicant-id", "", "Applicant ID to enrich")
	enrichCmd.Flags().BoolVar(&enrichAll, "all", false, "Enrich every applicant")
	enrichCmd.Flags().BoolVar(&enrichForce, "force", false, "Re-enrich applicants that already have an LLM summary")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(_ *cobra.Command, _ []string) error {
	if err := validateTargetFlags(enrichApplicantID, enrichAll); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger()
	ctx := context.Background()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	enricher := enrich.New(s, client, cfg.MaxRetries, log)

	ids, err := resolveTargets(ctx, s, enrichApplicantID, enrichAll)
	if err != nil {
		return err
	}

	return forEachTarget(ctx, ids, log, func(ctx context.Context, id string) error {
		result, err := enricher.Enrich(ctx, id, enrichForce)
		if errors.Is(err, enrich.ErrAlreadyEnriched) {
			_, _ = fmt.Fprintf(os.Stdout, "Applicant %s already enriched, skipping (use --force to re-run)\n", id)
			return nil
		}
		if err != nil {
			return err
		}
		score := "none"
		if result.Score != nil {
			score = fmt.Sprintf("%d", *result.Score)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Enriched %s (score: %s)\n", id, score)
		return nil
	})
}
