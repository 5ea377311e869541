package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/applicant-intake/internal/config"
	"github.com/marcus/applicant-intake/internal/decompress"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress",
	Short: "Restore normalized child records from the compressed JSON document",
	Long:  "Parse the applicant's compressed JSON document and reconcile personal details, work experience, and salary preferences against it, making the document authoritative.",
	RunE:  runDecompress,
}

var (
	decompressApplicantID string
	decompressAll         bool
)

func init() {
	decompressCmd.Flags().StringVar(&decompressApplicantID, "applicant-id", "", "Applicant ID to decompress")
	decompressCmd.Flags().BoolVar(&decompressAll, "all", false, "Decompress every applicant")

	rootCmd.AddCommand(decompressCmd)
}

func runDecompress(_ *cobra.Command, _ []string) error {
	if err := validateTargetFlags(decompressApplicantID, decompressAll); err != nil {
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

	decompressor := decompress.New(s, log)

	ids, err := resolveTargets(ctx, s, decompressApplicantID, decompressAll)
	if err != nil {
		return err
	}

	return forEachTarget(ctx, ids, log, func(ctx context.Context, id string) error {
		result, err := decompressor.Decompress(ctx, id)
		if err != nil {
			return err
		}
		experience := result.Experience
		_, _ = fmt.Fprintf(os.Stdout, "Decompressed %s (experience: %d created, %d updated, %d deleted)\n",
			id, experience.Created, experience.Updated, experience.Deleted)
		return nil
	})
}
