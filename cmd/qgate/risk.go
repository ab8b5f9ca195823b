package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	riskFormat string
	riskInputs inputFlags
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Rank source files by risk",
	Long: `Rank analyzable source files by a 0-100 risk score built from coverage gaps,
issue density, recency and size.

Without coverage or issue snapshots the ranking falls back to bootstrap mode,
which scores files by path, size and recency only.

Examples:
  qgate risk
  qgate risk --files=index.json --coverage=coverage-summary.json
  qgate risk --max-files=20 --format=human`,
	RunE: runRisk,
}

func init() {
	riskCmd.Flags().StringVar(&riskFormat, "format", "json", "Output format (json, human)")
	riskInputs.register(riskCmd)
	rootCmd.AddCommand(riskCmd)
}

func runRisk(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(&riskInputs)
	if err != nil {
		return err
	}
	defer env.Close()

	snaps, err := env.loadSnapshots()
	if err != nil {
		return err
	}
	g, err := env.newGate()
	if err != nil {
		return err
	}

	result := g.Risk(snaps)
	output, err := FormatResponse(&result, OutputFormat(riskFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
