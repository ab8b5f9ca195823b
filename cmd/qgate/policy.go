package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qgate/internal/policy"
)

var (
	policyFormat string
	policyFile   string
	policyInputs inputFlags
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Evaluate deploy readiness from a scan summary",
	Long: `Evaluate the latest scan summary against the policy thresholds and print an
OK, CAUTION or BLOCK verdict with its reasons.

Thresholds come from --policy, the config's policy section, or
.qgate/policy.toml, in that order. There are no built-in thresholds.

Exit codes: 0 OK, 1 CAUTION, 2 BLOCK, 3 error.

Examples:
  qgate policy --scan=scan.json
  qgate policy --policy=strict.toml --format=human`,
	RunE: runPolicy,
}

func init() {
	policyCmd.Flags().StringVar(&policyFormat, "format", "json", "Output format (json, human)")
	policyCmd.Flags().StringVar(&policyFile, "policy", "", "Policy thresholds file (TOML)")
	policyInputs.register(policyCmd)
	rootCmd.AddCommand(policyCmd)
}

func runPolicy(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(&policyInputs)
	if err != nil {
		return err
	}
	defer env.Close()

	g, err := env.newGate()
	if err != nil {
		return err
	}
	ev, err := g.Evaluator(policyFile)
	if err != nil {
		return err
	}
	snaps, err := env.loadSnapshots()
	if err != nil {
		return err
	}

	result := g.Evaluate(ev, snaps.Scan)
	resp := &PolicyResponseCLI{EvaluationResult: result, Actions: policy.ActionsFor(result)}
	output, err := FormatResponse(resp, OutputFormat(policyFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return verdictError(result.Status)
}
