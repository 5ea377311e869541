package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/applicant-intake/internal/compress"
	"github.com/marcus/applicant-intake/internal/config"
	"github.com/marcus/applicant-intake/internal/enrich"
	"github.com/marcus/applicant-intake/internal/pipeline"
	"github.com/marcus/applicant-intake/internal/shortlist"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full intake pipeline: compress, shortlist, enrich",
	Long:  "Run all three stages for one applicant or the whole base. Stages run in order per applicant; in batch mode one applicant's failure does not stop the rest.",
	RunE:  runPipeline,
}

var (
	runApplicantID string
	runAll         bool
	runForceLLM    bool
	runDelay       time.Duration
)

func init() {
	runCmd.Flags().StringVar(&runApplicantID, "applicant-id", "", "Applicant ID to process")
	runCmd.Flags().BoolVar(&runAll, "all", false, "Process every applicant")
	runCmd.Flags().BoolVar(&runForceLLM, "force-llm", false, "Re-enrich applicants that already have an LLM summary")
	runCmd.Flags().DurationVar(&runDelay, "delay", 0, "Pause between applicants in batch mode (e.g. 2s)")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(_ *cobra.Command, _ []string) error {
	if err := validateTargetFlags(runApplicantID, runAll); err != nil {
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

	runner := pipeline.New(
		s,
		compress.New(s, log),
		shortlist.NewEvaluator(s, cfg.Criteria(), log),
		enrich.New(s, client, cfg.MaxRetries, log),
		log,
	)

	opts := pipeline.Options{ForceLLM: runForceLLM, Delay: runDelay}

	if runApplicantID != "" {
		if err := runner.RunOne(ctx, runApplicantID, opts); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Processed applicant %s\n", runApplicantID)
		return nil
	}

	summary, err := runner.RunAll(ctx, opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Processed %d applicants (%d succeeded, %d failed)\n",
		summary.Processed, summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d applicants failed", summary.Failed, summary.Processed)
	}
	return nil
}
