package main

import (
	"fmt"

	"github.com/spf13/cobra"

	qerrors "qgate/internal/errors"
	"qgate/internal/history"
	"qgate/internal/paths"
)

var (
	runFormat     string
	runPolicyFile string
	runRecord     bool
	runTextfile   string
	runInputs     inputFlags
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full gate: risk, coverage, suggestions and policy",
	Long: `Run every stage and print the combined report.

--record stores the verdict and report in the run history database.
--metrics-textfile writes the run's metrics in the node-exporter textfile
format.

Exit codes: 0 OK, 1 CAUTION, 2 BLOCK, 3 error.

Examples:
  qgate run
  qgate run --record --format=human
  qgate run --metrics-textfile=/var/lib/node_exporter/qgate.prom`,
	RunE: runGate,
}

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", "json", "Output format (json, human)")
	runCmd.Flags().StringVar(&runPolicyFile, "policy", "", "Policy thresholds file (TOML)")
	runCmd.Flags().BoolVar(&runRecord, "record", false, "Record the run in the history database")
	runCmd.Flags().StringVar(&runTextfile, "metrics-textfile", "", "Write metrics to this file")
	runInputs.register(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runGate(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(&runInputs)
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
	report, err := g.Run(ctx, snaps, runPolicyFile)
	if err != nil {
		return err
	}

	if runRecord {
		store, err := openHistory(env)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		run, err := store.Record(ctx, report.Policy, report)
		if err != nil {
			return qerrors.New(qerrors.HistoryUnavailable, "failed to record run", err)
		}
		env.logger.Info("Recorded run", "id", run.ID)
	}

	if err := env.writeMetrics(runTextfile); err != nil {
		return err
	}

	output, err := FormatResponse(report, OutputFormat(runFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return verdictError(report.Policy.Status)
}

func openHistory(env *cliEnv) (*history.Store, error) {
	dbPath := paths.Resolve(env.cfg.RepoRoot, env.cfg.History.Path)
	store, err := history.Open(dbPath, history.WithLogger(env.logger))
	if err != nil {
		return nil, qerrors.New(qerrors.HistoryUnavailable, "failed to open run history", err).
			WithDetails(map[string]string{"path": dbPath})
	}
	return store, nil
}
