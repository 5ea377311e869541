package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/applicant-intake/internal/config"
	"github.com/marcus/applicant-intake/internal/shortlist"
)

var shortlistCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Evaluate applicants against the shortlisting criteria",
	Long:  "Apply the experience, compensation, and location rules to the applicant's compressed JSON document, updating shortlist status and creating lead records for applicants that pass.",
	RunE:  runShortlist,
}

var (
	shortlistApplicantID string
	shortlistAll         bool
)

func init() {
	shortlistCmd.Flags().StringVar(&shortlistApplicantID, "applicant-id", "", "Applicant ID to evaluate")
	shortlistCmd.Flags().BoolVar(&shortlistAll, "all", false, "Evaluate every applicant")

	rootCmd.AddCommand(shortlistCmd)
}

func runShortlist(_ *cobra.Command, _ []string) error {
	if err := validateTargetFlags(shortlistApplicantID, shortlistAll); err != nil {
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

	evaluator := shortlist.NewEvaluator(s, cfg.Criteria(), log)

	ids, err := resolveTargets(ctx, s, shortlistApplicantID, shortlistAll)
	if err != nil {
		return err
	}

	return forEachTarget(ctx, ids, log, func(ctx context.Context, id string) error {
		outcome, err := evaluator.Process(ctx, id)
		if err != nil {
			return err
		}
		verdict := "rejected"
		if outcome.Passed {
			verdict = "shortlisted"
		}
		_, _ = fmt.Fprintf(os.Stdout, "Applicant %s %s\n%s\n", id, verdict, outcome.Reasoning())
		return nil
	})
}
