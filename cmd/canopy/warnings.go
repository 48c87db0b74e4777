package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"canopy/internal/model"
)

var (
	warningsFormat string
	warningsErrors bool
)

var warningsCmd = &cobra.Command{
	Use:   "warnings",
	Short: "Report drift and hygiene warnings",
	Long: `Compute a topology pass and print only its warnings: branches behind
their parent, dirty working copies, failing checks, naming violations,
and divergence between the designed and inferred trees.`,
	Run: runWarnings,
}

func init() {
	warningsCmd.Flags().StringVar(&warningsFormat, "format", "human", "Output format (json, human)")
	warningsCmd.Flags().BoolVar(&warningsErrors, "errors-only", false, "Show only error-severity warnings")
	rootCmd.AddCommand(warningsCmd)
}

func runWarnings(cmd *cobra.Command, args []string) {
	env := loadEnvironment()
	ctx := newContext()

	snap := computeSnapshot(ctx, env)

	warnings := snap.Warnings
	if warningsErrors {
		var errs []model.Warning
		for _, w := range warnings {
			if w.Severity == model.SeverityError {
				errs = append(errs, w)
			}
		}
		warnings = errs
	}

	if warningsFormat == "json" {
		data, err := json.MarshalIndent(warnings, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	if len(warnings) == 0 {
		fmt.Println("No warnings.")
		return
	}
	printWarnings(warnings)

	for _, w := range warnings {
		if w.Severity == model.SeverityError {
			os.Exit(2)
		}
	}
}
