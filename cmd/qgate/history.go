package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	qerrors "qgate/internal/errors"
	"qgate/internal/history"
)

var (
	historyFormat string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded gate runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its full report",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", "json", "Output format (json, human)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum runs to list (default from config)")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(nil)
	if err != nil {
		return err
	}
	defer env.Close()

	store, err := openHistory(env)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	limit := historyLimit
	if limit <= 0 {
		limit = env.cfg.History.Limit
	}
	runs, err := store.List(newContext(), limit)
	if err != nil {
		return qerrors.New(qerrors.HistoryUnavailable, "failed to list runs", err)
	}

	output, err := FormatResponse(&HistoryListCLI{Runs: runs}, OutputFormat(historyFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(nil)
	if err != nil {
		return err
	}
	defer env.Close()

	store, err := openHistory(env)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.Get(newContext(), args[0])
	if errors.Is(err, history.ErrNotFound) {
		return qerrors.Newf(qerrors.RunNotFound, "no recorded run with id %s", args[0])
	}
	if err != nil {
		return qerrors.New(qerrors.HistoryUnavailable, "failed to read run", err)
	}

	output, err := FormatResponse(run, OutputFormat(historyFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
