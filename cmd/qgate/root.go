package main

import (
	"qgate/internal/version"

	"github.com/spf13/cobra"
)

var (
	configFlag  string
	repoFlag    string
	verbosity   int
	quietFlag   bool
	logFileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "qgate",
	Short: "qgate - deploy quality gate",
	Long: `qgate ranks risky files, estimates test coverage, suggests the tests worth
writing next and turns a project scan into an OK / CAUTION / BLOCK verdict.

It reads snapshots produced by other tools (file index, coverage report, issue
list, test mapping, scan summary) and never touches source files itself.

Exit codes for policy and run: 0 OK, 1 CAUTION, 2 BLOCK, 3 error.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.SetVersionTemplate("qgate version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: .qgate/config.{json,yaml,toml})")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Repository root (default: current directory)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all logging")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Also write logs to this file")
}
