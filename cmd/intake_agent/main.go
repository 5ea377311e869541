// Package main provides the entry point for the contractor applicant
// intake agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intake_agent",
	Short: "Contractor applicant intake automation",
	Long:  "Intake agent compresses applicant data into canonical JSON documents, restores edited documents back into normalized tables, applies rule-based shortlisting, and enriches applicants with LLM evaluations.",
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
