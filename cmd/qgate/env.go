package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"qgate/internal/config"
	qerrors "qgate/internal/errors"
	"qgate/internal/gate"
	"qgate/internal/metrics"
	"qgate/internal/paths"
	"qgate/internal/slogutil"
)

// cliEnv is the per-invocation state shared by the commands.
type cliEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
	metrics *metrics.Recorder
}

// setupEnv loads the config, applies input flag overrides and builds the
// logger.
func setupEnv(in *inputFlags) (*cliEnv, error) {
	root, err := repoRoot()
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if configFlag != "" {
		cfg, err = config.LoadConfigFile(paths.Resolve(root, configFlag), root)
	} else {
		cfg, err = config.LoadConfig(root)
	}
	if err != nil {
		return nil, qerrors.New(qerrors.ConfigInvalid, "failed to load configuration", err)
	}
	if in != nil {
		in.apply(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, qerrors.New(qerrors.ConfigInvalid, "invalid flag value", err)
		}
	}

	env := &cliEnv{cfg: cfg, metrics: metrics.NewRecorder()}
	if err := env.initLogger(); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *cliEnv) initLogger() error {
	level := slogutil.LevelFromString(e.cfg.Logging.Level)
	if verbosity > 0 || quietFlag {
		level = slogutil.LevelFromVerbosity(verbosity, quietFlag)
	}
	format := slogutil.Format(e.cfg.Logging.Format)
	logger := slogutil.New(os.Stderr, format, level)

	logPath := e.cfg.Logging.File
	if logFileFlag != "" {
		logPath = logFileFlag
	}
	if logPath != "" && !quietFlag {
		fileLogger, f, err := slogutil.NewFileLogger(paths.Resolve(e.cfg.RepoRoot, logPath), level)
		if err != nil {
			return qerrors.New(qerrors.ConfigInvalid, "cannot open log file", err)
		}
		e.logFile = f
		logger = slog.New(slogutil.NewTeeHandler(logger.Handler(), fileLogger.Handler()))
	}
	e.logger = logger
	return nil
}

// Close releases the log file.
func (e *cliEnv) Close() {
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

func (e *cliEnv) newGate(opts ...gate.Option) (*gate.Gate, error) {
	opts = append([]gate.Option{gate.WithLogger(e.logger), gate.WithMetrics(e.metrics)}, opts...)
	return gate.New(e.cfg, opts...)
}

func (e *cliEnv) loadSnapshots() (*gate.Snapshots, error) {
	in := e.cfg.Inputs
	p := gate.Paths{
		Files:    in.Files,
		Coverage: in.Coverage,
		Issues:   in.Issues,
		Mapping:  in.Mapping,
		Scan:     in.Scan,
	}.Resolve(e.cfg.RepoRoot)

	snaps, err := gate.Load(p)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Loaded snapshots",
		"files", len(snaps.Files),
		"issues", len(snaps.Issues),
		"scan", snaps.HasScan,
	)
	return snaps, nil
}

// writeMetrics writes the textfile when one is configured.
func (e *cliEnv) writeMetrics(path string) error {
	if path == "" {
		path = e.cfg.Metrics.Textfile
	}
	if path == "" {
		return nil
	}
	path = paths.Resolve(e.cfg.RepoRoot, path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return qerrors.New(qerrors.InternalError, "cannot create metrics directory", err)
	}
	if err := e.metrics.WriteTextfile(path); err != nil {
		return qerrors.New(qerrors.InternalError, "cannot write metrics textfile", err)
	}
	e.logger.Debug("Wrote metrics textfile", "path", path)
	return nil
}

// repoRoot returns --repo or the working directory.
func repoRoot() (string, error) {
	if repoFlag != "" {
		abs, err := filepath.Abs(repoFlag)
		if err != nil {
			return "", qerrors.New(qerrors.InternalError, "invalid repository path", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", qerrors.New(qerrors.InternalError, "failed to get current directory", err)
	}
	return wd, nil
}

func newContext() context.Context {
	return context.Background()
}
