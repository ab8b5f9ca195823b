package main

import (
	"github.com/spf13/cobra"

	"qgate/internal/config"
)

// inputFlags are the snapshot path and limit overrides shared by the
// analysis commands.
type inputFlags struct {
	files          string
	coverage       string
	issues         string
	mapping        string
	scan           string
	maxFiles       int
	maxSuggestions int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.files, "files", "", "File index snapshot (JSON or YAML)")
	cmd.Flags().StringVar(&f.coverage, "coverage", "", "Coverage snapshot")
	cmd.Flags().StringVar(&f.issues, "issues", "", "Issue snapshot")
	cmd.Flags().StringVar(&f.mapping, "mapping", "", "Source-to-test mapping snapshot")
	cmd.Flags().StringVar(&f.scan, "scan", "", "Scan summary for policy evaluation")
	cmd.Flags().IntVar(&f.maxFiles, "max-files", 0, "Maximum files in the risk ranking (default from config)")
	cmd.Flags().IntVar(&f.maxSuggestions, "max-suggestions", 0, "Maximum test suggestions (default from config)")
}

// apply overrides config values with the flags that were set.
func (f *inputFlags) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Inputs.Files, f.files)
	set(&cfg.Inputs.Coverage, f.coverage)
	set(&cfg.Inputs.Issues, f.issues)
	set(&cfg.Inputs.Mapping, f.mapping)
	set(&cfg.Inputs.Scan, f.scan)
	if f.maxFiles > 0 {
		cfg.Risk.MaxFiles = f.maxFiles
	}
	if f.maxSuggestions > 0 {
		cfg.Suggest.MaxSuggestions = f.maxSuggestions
	}
}
