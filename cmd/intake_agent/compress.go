package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/applicant-intake/internal/compress"
	"github.com/marcus/applicant-intake/internal/config"
)

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Gather applicant child records into one compressed JSON document",
	Long:  "Gather personal details, work experience, and salary preferences into a single canonical JSON document stored on the applicant record.",
	RunE:  runCompress,
}

var (
	compressApplicantID string
	compressAll         bool
)

func init() {
	compressCmd.Flags().StringVar(&compressApplicantID, "applicant-id", "", "Applicant ID to compress")
	compressCmd.Flags().BoolVar(&compressAll, "all", false, "Compress every applicant")

	rootCmd.AddCommand(compressCmd)
}

func runCompress(_ *cobra.Command, _ []string) error {
	if err := validateTargetFlags(compressApplicantID, compressAll); err != nil {
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

	compressor := compress.New(s, log)

	ids, err := resolveTargets(ctx, s, compressApplicantID, compressAll)
	if err != nil {
		return err
	}

	return forEachTarget(ctx, ids, log, func(ctx context.Context, id string) error {
		doc, err := compressor.Compress(ctx, id)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Compressed %s (%d experience entries, %.1f years total)\n",
			id, len(doc.Experience), doc.TotalExperienceYears)
		return nil
	})
}
