package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"qgate/internal/config"
	qerrors "qgate/internal/errors"
	"qgate/internal/paths"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize qgate configuration",
	Long:  "Creates a .qgate/ directory with the default configuration in the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	configPath := filepath.Join(paths.DataDir(root), paths.ConfigName+".json")
	if paths.Exists(configPath) && !initForce {
		// Already initialized is success.
		fmt.Fprintln(out, "qgate already initialized.")
		fmt.Fprintf(out, "Configuration at: %s\n", configPath)
		fmt.Fprintln(out, "\nRun 'qgate init --force' to reinitialize.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return qerrors.New(qerrors.InternalError, "failed to write config file", err)
	}

	fmt.Fprintln(out, "qgate initialized successfully!")
	fmt.Fprintf(out, "Configuration written to: %s\n", configPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  1. Write policy thresholds to %s\n", paths.PolicyPath(root))
	fmt.Fprintln(out, "  2. Point the inputs section at your snapshot files")
	fmt.Fprintln(out, "  3. Run 'qgate run --format=human'")
	return nil
}
