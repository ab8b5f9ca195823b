package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"qgate/internal/coverage"
	"qgate/internal/policy"
	"qgate/internal/risk"
	"qgate/internal/suggest"
	"qgate/internal/version"
)

func TestRecorder_RecordEvaluation(t *testing.T) {
	r := NewRecorder()
	r.RecordEvaluation(&policy.EvaluationResult{
		Status: policy.StatusBlock,
		Reasons: []policy.Reason{
			{Code: policy.ReasonTestsFailing, Severity: policy.SeverityCritical},
			{Code: policy.ReasonTooManyIssues, Severity: policy.SeverityWarning},
		},
	})
	r.RecordEvaluation(&policy.EvaluationResult{Status: policy.StatusOK})

	if got := testutil.ToFloat64(r.evaluations.WithLabelValues("BLOCK")); got != 1 {
		t.Errorf("BLOCK evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.evaluations.WithLabelValues("OK")); got != 1 {
		t.Errorf("OK evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.reasons.WithLabelValues("tests_failing", "critical")); got != 1 {
		t.Errorf("tests_failing reasons = %v, want 1", got)
	}
}

func TestRecorder_RecordRisk(t *testing.T) {
	r := NewRecorder()
	r.RecordRisk(risk.Result{
		Mode: risk.ModeBootstrap,
		Entries: []risk.FileRiskEntry{
			{Path: "a.ts", RiskLevel: risk.RiskHigh},
			{Path: "b.ts", RiskLevel: risk.RiskHigh},
			{Path: "c.ts", RiskLevel: risk.RiskLow},
		},
	})

	if got := testutil.ToFloat64(r.riskRuns.WithLabelValues("bootstrap")); got != 1 {
		t.Errorf("bootstrap runs = %v, want 1", got)
	}
	tests := map[string]float64{"high": 2, "medium": 0, "low": 1}
	for level, want := range tests {
		if got := testutil.ToFloat64(r.riskEntries.WithLabelValues(level)); got != want {
			t.Errorf("risk entries[%s] = %v, want %v", level, got, want)
		}
	}
}

func TestRecorder_RecordSuggestionsAndCoverage(t *testing.T) {
	r := NewRecorder()
	r.RecordCoverage(&coverage.AnalysisResult{Summary: coverage.Summary{
		EstimatedCoveragePercent: 60,
		HighRiskUntestedCount:    3,
	}})
	r.RecordSuggestions(&suggest.Output{
		Suggestions: []suggest.TestSuggestion{
			{ID: "1", Priority: suggest.PriorityP0},
			{ID: "2", Priority: suggest.PriorityP2},
		},
		BaselineCoverage:  20,
		ProjectedCoverage: 28,
		Debug:             suggest.Debug{Enhancement: "fallback"},
	})

	if got := testutil.ToFloat64(r.coveragePct.WithLabelValues("estimated")); got != 60 {
		t.Errorf("estimated coverage = %v, want 60", got)
	}
	if got := testutil.ToFloat64(r.coveragePct.WithLabelValues("projected")); got != 28 {
		t.Errorf("projected coverage = %v, want 28", got)
	}
	if got := testutil.ToFloat64(r.untested.WithLabelValues("high")); got != 3 {
		t.Errorf("high untested = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.suggestions.WithLabelValues("P1")); got != 0 {
		t.Errorf("P1 suggestions = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.suggestions.WithLabelValues("P0")); got != 1 {
		t.Errorf("P0 suggestions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.enhancements.WithLabelValues("fallback")); got != 1 {
		t.Errorf("fallback enhancements = %v, want 1", got)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.RecordEvaluation(&policy.EvaluationResult{Status: policy.StatusOK})
	r.RecordRisk(risk.Result{})
	r.ObserveStage("risk", time.Second)
	r.MarkRun(time.Now())
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile on nil recorder = %v, want nil", err)
	}
	if r.Registry() != nil {
		t.Error("Registry() on nil recorder should be nil")
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveStage("policy", 10*time.Millisecond)
	r.RecordEvaluation(&policy.EvaluationResult{Status: policy.StatusCaution})
	r.MarkRun(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "qgate.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`qgate_policy_evaluations_total{status="CAUTION"} 1`,
		`qgate_stage_duration_seconds_count{stage="policy"} 1`,
		"qgate_last_run_timestamp_seconds 1.7e+09",
		`qgate_build_info{commit="` + version.ShortCommit() + `",version="` + version.Version + `"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q\n%s", want, text)
		}
	}
}
