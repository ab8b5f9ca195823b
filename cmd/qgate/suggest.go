package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	suggestFormat string
	suggestInputs inputFlags
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest the tests worth writing next",
	Long: `Turn the risk ranking into prioritized test suggestions with scaffold
snippets and a projected coverage figure.

When enhancement is enabled in the config, the suggestions are passed to the
configured command for refinement; any failure keeps the static suggestions.

Examples:
  qgate suggest
  qgate suggest --max-suggestions=10 --format=human`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&suggestFormat, "format", "json", "Output format (json, human)")
	suggestInputs.register(suggestCmd)
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(&suggestInputs)
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

	ctx := newContext()
	out := g.Suggest(ctx, snaps, g.Risk(snaps))
	output, err := FormatResponse(out, OutputFormat(suggestFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
