package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"qgate/internal/coverage"
	"qgate/internal/gate"
	"qgate/internal/history"
	"qgate/internal/policy"
	"qgate/internal/risk"
	"qgate/internal/suggest"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// PolicyResponseCLI is the output of the policy command.
type PolicyResponseCLI struct {
	*policy.EvaluationResult
	Actions []policy.Action `json:"actions"`
}

// HistoryListCLI is the output of history list.
type HistoryListCLI struct {
	Runs []history.Run `json:"runs"`
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp any, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp any) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp any) (string, error) {
	switch v := resp.(type) {
	case *risk.Result:
		return formatRiskHuman(v), nil
	case *coverage.AnalysisResult:
		return formatCoverageHuman(v), nil
	case *suggest.Output:
		return formatSuggestHuman(v), nil
	case *PolicyResponseCLI:
		return formatPolicyHuman(v), nil
	case *gate.Report:
		return formatReportHuman(v), nil
	case *HistoryListCLI:
		return formatHistoryHuman(v), nil
	case *history.Run:
		return formatRunHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func header(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
}

func formatRiskHuman(r *risk.Result) string {
	var b strings.Builder
	header(&b, fmt.Sprintf("Risk Ranking (%s mode)", r.Mode))

	b.WriteString(fmt.Sprintf("Files: %d indexed, %d analyzable, %d excluded\n\n",
		r.Stats.Indexed, r.Stats.Analyzable, r.Stats.Excluded))

	for i, e := range r.Entries {
		b.WriteString(fmt.Sprintf("%2d. [%-6s %3d] %s\n", i+1, e.RiskLevel, e.ImpactScore, e.Path))
		for _, reason := range e.Reasons {
			b.WriteString(fmt.Sprintf("      - %s\n", reason))
		}
	}
	writeNotes(&b, r.Notes)
	return b.String()
}

func formatCoverageHuman(r *coverage.AnalysisResult) string {
	var b strings.Builder
	header(&b, "Coverage Estimate")

	s := r.Summary
	b.WriteString(fmt.Sprintf("Estimated coverage: %d%% (%d of %d source files have tests)\n",
		s.EstimatedCoveragePercent, s.FilesWithAnyTests, s.TotalSourceFiles))
	b.WriteString(fmt.Sprintf("Test files: %d\n", s.TotalTestFiles))
	b.WriteString(fmt.Sprintf("Untested: %d high risk, %d medium risk\n\n",
		s.HighRiskUntestedCount, s.MediumRiskUntestedCount))

	for _, h := range r.Hints {
		icon := "✓"
		if !h.Tested() {
			icon = "✗"
		}
		b.WriteString(fmt.Sprintf("%s [%d] %s (%s, %s)\n", icon, h.RiskScore, h.FilePath, h.Kind, h.CoverageLevel))
		for _, reason := range h.Reasons {
			b.WriteString(fmt.Sprintf("      - %s\n", reason))
		}
	}
	return b.String()
}

func formatSuggestHuman(o *suggest.Output) string {
	var b strings.Builder
	header(&b, "Test Suggestions")

	b.WriteString(fmt.Sprintf("Coverage: %.1f%% -> %.1f%% projected\n\n", o.BaselineCoverage, o.ProjectedCoverage))
	for i, s := range o.Suggestions {
		b.WriteString(fmt.Sprintf("%2d. [%s] %s", i+1, s.Priority, s.FilePath))
		if s.SymbolName != "" {
			b.WriteString(fmt.Sprintf(" (%s)", s.SymbolName))
		}
		b.WriteString(fmt.Sprintf(" +%.0f%%\n", s.Gain()))
		b.WriteString(fmt.Sprintf("      %s\n", s.Description))
	}
	if o.Debug.Enhancement != "disabled" {
		b.WriteString(fmt.Sprintf("\nEnhancement: %s\n", o.Debug.Enhancement))
	}
	writeNotes(&b, o.Debug.Notes)
	return b.String()
}

func formatPolicyHuman(p *PolicyResponseCLI) string {
	var b strings.Builder
	header(&b, "Deploy Readiness")
	writeVerdict(&b, p.EvaluationResult, p.Actions)
	return b.String()
}

func writeVerdict(b *strings.Builder, r *policy.EvaluationResult, actions []policy.Action) {
	b.WriteString(fmt.Sprintf("%s %s: %s\n\n", statusIcon(r.Status), r.Status, r.Summary))
	for _, reason := range r.Reasons {
		b.WriteString(fmt.Sprintf("  %s %s\n", severityIcon(reason.Severity), reason.Label))
		for _, f := range reason.AffectedFiles {
			b.WriteString(fmt.Sprintf("      %s\n", f))
		}
	}
	if len(actions) > 0 {
		b.WriteString("\nSuggested actions:\n")
		for _, a := range actions {
			b.WriteString(fmt.Sprintf("  - %s\n", a.Description))
			if a.Command != "" {
				b.WriteString(fmt.Sprintf("    $ %s\n", a.Command))
			}
		}
	}
}

func formatReportHuman(r *gate.Report) string {
	var b strings.Builder
	header(&b, "qgate Report")
	writeVerdict(&b, r.Policy, r.Actions)

	b.WriteString(fmt.Sprintf("\nCoverage: %d%% estimated, %.1f%% baseline, %.1f%% projected\n",
		r.Coverage.Summary.EstimatedCoveragePercent,
		r.Suggestions.BaselineCoverage,
		r.Suggestions.ProjectedCoverage))

	if len(r.Risk.Entries) > 0 {
		b.WriteString("\nTop risks:\n")
		for _, e := range r.Risk.Entries[:min(5, len(r.Risk.Entries))] {
			b.WriteString(fmt.Sprintf("  [%-6s %3d] %s\n", e.RiskLevel, e.ImpactScore, e.Path))
		}
	}
	if len(r.Suggestions.Suggestions) > 0 {
		b.WriteString("\nNext tests:\n")
		for _, s := range r.Suggestions.Suggestions[:min(5, len(r.Suggestions.Suggestions))] {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", s.Priority, s.Description))
		}
	}
	return b.String()
}

func formatHistoryHuman(h *HistoryListCLI) string {
	var b strings.Builder
	header(&b, "Run History")
	if len(h.Runs) == 0 {
		b.WriteString("No recorded runs. Use 'qgate run --record' to record one.\n")
		return b.String()
	}
	for _, r := range h.Runs {
		b.WriteString(fmt.Sprintf("%s  %s %-7s %s\n",
			r.ID, r.RecordedAt.Local().Format(time.DateTime), r.Status, r.Summary))
	}
	return b.String()
}

func formatRunHuman(r *history.Run) (string, error) {
	var b strings.Builder
	header(&b, "Run "+r.ID)
	b.WriteString(fmt.Sprintf("Recorded: %s\n", r.RecordedAt.Local().Format(time.DateTime)))
	b.WriteString(fmt.Sprintf("%s %s: %s\n", statusIcon(r.Status), r.Status, r.Summary))
	if len(r.Report) > 0 {
		report, err := formatJSON(r.Report)
		if err != nil {
			return "", err
		}
		b.WriteString("\nReport:\n" + report + "\n")
	}
	return b.String(), nil
}

func writeNotes(b *strings.Builder, notes []string) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\nNotes:\n")
	for _, n := range notes {
		b.WriteString(fmt.Sprintf("  ! %s\n", n))
	}
}

func statusIcon(s policy.Status) string {
	switch s {
	case policy.StatusOK:
		return "✓"
	case policy.StatusCaution:
		return "⚠"
	default:
		return "✗"
	}
}

func severityIcon(s policy.Severity) string {
	switch s {
	case policy.SeverityCritical:
		return "✗"
	case policy.SeverityWarning:
		return "⚠"
	default:
		return "i"
	}
}
