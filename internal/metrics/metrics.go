// Package metrics instruments gate runs with prometheus collectors kept in a
// private registry, exported as a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"qgate/internal/coverage"
	"qgate/internal/policy"
	"qgate/internal/risk"
	"qgate/internal/suggest"
	"qgate/internal/version"
)

const namespace = "qgate"

// Recorder owns the gate metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	evaluations   *prometheus.CounterVec
	reasons       *prometheus.CounterVec
	riskRuns      *prometheus.CounterVec
	riskEntries   *prometheus.GaugeVec
	coveragePct   *prometheus.GaugeVec
	untested      *prometheus.GaugeVec
	suggestions   *prometheus.GaugeVec
	enhancements  *prometheus.CounterVec
	lastRun       prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry. The registry always
// carries a qgate_build_info series for the running binary.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build metadata of the qgate binary that wrote the metrics.",
	}, []string{"version", "commit"}).WithLabelValues(version.Version, version.ShortCommit()).Set(1)

	return &Recorder{
		registry: reg,
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_evaluations_total",
			Help:      "Policy evaluations by resulting status.",
		}, []string{"status"}),
		reasons: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_reasons_total",
			Help:      "Policy reasons by code and severity.",
		}, []string{"code", "severity"}),
		riskRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_runs_total",
			Help:      "Risk scoring runs by mode; mode=bootstrap counts bootstrap activations.",
		}, []string{"mode"}),
		riskEntries: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_entries",
			Help:      "Files ranked in the last risk run, by level.",
		}, []string{"level"}),
		coveragePct: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_percent",
			Help:      "Coverage percentages of the last run by kind (estimated, baseline, projected).",
		}, []string{"kind"}),
		untested: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "untested_files",
			Help:      "Source files without tests in the last run, by risk band.",
		}, []string{"risk"}),
		suggestions: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "suggestions",
			Help:      "Test suggestions of the last run, by priority.",
		}, []string{"priority"}),
		enhancements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhancements_total",
			Help:      "Suggestion enhancement outcomes (applied, fallback, disabled).",
		}, []string{"outcome"}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last recorded run.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRisk records a risk scoring result.
func (r *Recorder) RecordRisk(res risk.Result) {
	if r == nil {
		return
	}
	r.riskRuns.WithLabelValues(string(res.Mode)).Inc()
	counts := map[risk.RiskLevel]int{risk.RiskHigh: 0, risk.RiskMedium: 0, risk.RiskLow: 0}
	for _, e := range res.Entries {
		counts[e.RiskLevel]++
	}
	for level, n := range counts {
		r.riskEntries.WithLabelValues(string(level)).Set(float64(n))
	}
}

// RecordCoverage records a coverage estimate.
func (r *Recorder) RecordCoverage(res *coverage.AnalysisResult) {
	if r == nil || res == nil {
		return
	}
	r.coveragePct.WithLabelValues("estimated").Set(float64(res.Summary.EstimatedCoveragePercent))
	r.untested.WithLabelValues("high").Set(float64(res.Summary.HighRiskUntestedCount))
	r.untested.WithLabelValues("medium").Set(float64(res.Summary.MediumRiskUntestedCount))
}

// RecordSuggestions records a generator output.
func (r *Recorder) RecordSuggestions(out *suggest.Output) {
	if r == nil || out == nil {
		return
	}
	counts := map[suggest.Priority]int{suggest.PriorityP0: 0, suggest.PriorityP1: 0, suggest.PriorityP2: 0}
	for _, s := range out.Suggestions {
		counts[s.Priority]++
	}
	for p, n := range counts {
		r.suggestions.WithLabelValues(string(p)).Set(float64(n))
	}
	r.coveragePct.WithLabelValues("baseline").Set(out.BaselineCoverage)
	r.coveragePct.WithLabelValues("projected").Set(out.ProjectedCoverage)
	r.enhancements.WithLabelValues(out.Debug.Enhancement).Inc()
}

// RecordEvaluation records a policy verdict and its reasons.
func (r *Recorder) RecordEvaluation(res *policy.EvaluationResult) {
	if r == nil || res == nil {
		return
	}
	r.evaluations.WithLabelValues(string(res.Status)).Inc()
	for _, reason := range res.Reasons {
		r.reasons.WithLabelValues(string(reason.Code), string(reason.Severity)).Inc()
	}
}

// MarkRun stamps the time of the run.
func (r *Recorder) MarkRun(at time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
