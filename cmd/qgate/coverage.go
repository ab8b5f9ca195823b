package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	coverageFormat string
	coverageInputs inputFlags
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Estimate which source files have tests",
	Long: `Estimate test coverage from the file index and the source-to-test mapping,
without running any tests. Files are tagged with a coverage level and a 1-5
risk score; auth, payment, deploy and security code always scores 5.

Examples:
  qgate coverage
  qgate coverage --mapping=test-mapping.json --format=human`,
	RunE: runCoverage,
}

func init() {
	coverageCmd.Flags().StringVar(&coverageFormat, "format", "json", "Output format (json, human)")
	coverageInputs.register(coverageCmd)
	rootCmd.AddCommand(coverageCmd)
}

func runCoverage(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(&coverageInputs)
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

	output, err := FormatResponse(g.Coverage(snaps), OutputFormat(coverageFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
