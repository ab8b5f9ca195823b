// Package gate wires configuration into the risk, coverage, suggestion and
// policy components and runs them as one pipeline.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"qgate/internal/config"
	"qgate/internal/coverage"
	"qgate/internal/enhance"
	qerrors "qgate/internal/errors"
	"qgate/internal/metrics"
	"qgate/internal/policy"
	"qgate/internal/risk"
	"qgate/internal/slogutil"
	"qgate/internal/suggest"
)

// Report is the combined output of a full run.
type Report struct {
	GeneratedAt time.Time                `json:"generatedAt"`
	Risk        risk.Result              `json:"risk"`
	Coverage    *coverage.AnalysisResult `json:"coverage"`
	Suggestions *suggest.Output          `json:"suggestions"`
	Policy      *policy.EvaluationResult `json:"policy"`
	Actions     []policy.Action          `json:"actions"`
}

// Gate runs the pipeline stages. It is safe for concurrent use.
type Gate struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Recorder
	enhancer suggest.Enhancer
	idFunc   func() string
	now      func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger passed down to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics records every stage into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(g *Gate) { g.metrics = r }
}

// WithEnhancer overrides the enhancer built from the config command.
func WithEnhancer(e suggest.Enhancer) Option {
	return func(g *Gate) { g.enhancer = e }
}

// WithIDFunc overrides the suggestion id source.
func WithIDFunc(f func() string) Option {
	return func(g *Gate) { g.idFunc = f }
}

// WithClock overrides the time source used by every stage.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a Gate from a loaded config. When enhancement is enabled and
// no enhancer was supplied, the configured command is used.
func New(cfg *config.Config, opts ...Option) (*Gate, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	g := &Gate{
		cfg:    cfg,
		logger: slogutil.NewDiscardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.enhancer == nil && cfg.Enhancement.Enabled {
		dir := cfg.Enhancement.Dir
		if dir == "" {
			dir = cfg.RepoRoot
		}
		ce, err := enhance.NewCommandEnhancer(cfg.Enhancement.Command,
			enhance.WithDir(dir),
			enhance.WithEnv(cfg.Enhancement.Env...),
			enhance.WithLogger(g.logger),
		)
		if err != nil {
			return nil, err
		}
		g.enhancer = ce
	}
	return g, nil
}

// Config returns the gate's configuration.
func (g *Gate) Config() *config.Config {
	return g.cfg
}

// Risk ranks the files of s.
func (g *Gate) Risk(s *Snapshots) risk.Result {
	defer g.observe("risk", time.Now())
	scorer := risk.NewScorer(g.cfg.RiskConfig(), risk.WithLogger(g.logger))
	res := scorer.Score(risk.Input{
		Files:    s.Files,
		Issues:   s.Issues,
		Coverage: s.FileCov,
		Now:      g.now(),
	})
	g.metrics.RecordRisk(res)
	return res
}

// Coverage estimates test coverage of the files of s.
func (g *Gate) Coverage(s *Snapshots) *coverage.AnalysisResult {
	defer g.observe("coverage", time.Now())
	est := coverage.NewEstimator(g.cfg.CoverageConfig(), coverage.WithLogger(g.logger))
	res := est.Analyze(s.Files, s.Mapping, g.now())
	g.metrics.RecordCoverage(res)
	return res
}

// Suggest turns a risk ranking into test suggestions.
func (g *Gate) Suggest(ctx context.Context, s *Snapshots, r risk.Result) *suggest.Output {
	defer g.observe("suggest", time.Now())
	opts := []suggest.Option{suggest.WithLogger(g.logger)}
	if g.enhancer != nil {
		opts = append(opts, suggest.WithEnhancer(g.enhancer))
	}
	if g.idFunc != nil {
		opts = append(opts, suggest.WithIDFunc(g.idFunc))
	}
	gen := suggest.NewGenerator(g.cfg.SuggestConfig(), opts...)
	out := gen.Generate(ctx, suggest.Input{
		Risk:             r,
		Files:            s.Files,
		CoverageSnapshot: s.Coverage,
		MaxFiles:         g.cfg.Risk.MaxFiles,
	})
	g.metrics.RecordSuggestions(out)
	return out
}

// Evaluator builds a policy evaluator. explicitPolicy is an optional
// policy.toml path that overrides the config.
func (g *Gate) Evaluator(explicitPolicy string) (*policy.Evaluator, error) {
	th, err := g.cfg.ResolvePolicy(explicitPolicy)
	if err != nil {
		if errors.Is(err, config.ErrPolicyNotConfigured) {
			return nil, qerrors.New(qerrors.PolicyNotConfigured, "no policy thresholds configured", err)
		}
		return nil, qerrors.New(qerrors.PolicyInvalid, "policy thresholds could not be loaded", err)
	}
	ev, err := policy.NewEvaluator(*th, policy.WithClock(g.now), policy.WithLogger(g.logger))
	if err != nil {
		return nil, qerrors.New(qerrors.PolicyInvalid, "policy thresholds are invalid", err)
	}
	return ev, nil
}

// Evaluate runs the policy check on a scan summary.
func (g *Gate) Evaluate(ev *policy.Evaluator, scan policy.ScanInput) *policy.EvaluationResult {
	defer g.observe("policy", time.Now())
	res := ev.Evaluate(scan)
	g.metrics.RecordEvaluation(res)
	return res
}

// Run executes every stage. Risk, coverage and policy are independent and
// run concurrently; suggestions wait for the risk ranking.
func (g *Gate) Run(ctx context.Context, s *Snapshots, explicitPolicy string) (*Report, error) {
	ev, err := g.Evaluator(explicitPolicy)
	if err != nil {
		return nil, err
	}

	report := &Report{GeneratedAt: g.now().UTC()}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		report.Risk = g.Risk(s)
		report.Suggestions = g.Suggest(egCtx, s, report.Risk)
		return nil
	})
	eg.Go(func() error {
		report.Coverage = g.Coverage(s)
		return nil
	})
	eg.Go(func() error {
		report.Policy = g.Evaluate(ev, s.Scan)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, qerrors.New(qerrors.InternalError, "run cancelled", err)
	}

	report.Actions = policy.ActionsFor(report.Policy)
	g.metrics.MarkRun(report.GeneratedAt)

	g.logger.Info("Gate run finished",
		"status", report.Policy.Status,
		"reasons", len(report.Policy.Reasons),
		"riskEntries", len(report.Risk.Entries),
		"suggestions", len(report.Suggestions.Suggestions),
	)
	return report, nil
}

func (g *Gate) observe(stage string, start time.Time) {
	g.metrics.ObserveStage(stage, time.Since(start))
}
