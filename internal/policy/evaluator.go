package policy

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"qgate/internal/slogutil"
)

// Evaluator applies a fixed set of checks to a scan summary.
// It keeps no state between calls and is safe for concurrent use.
type Evaluator struct {
	thresholds Thresholds
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the evaluator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEvaluator validates the thresholds and returns an evaluator.
func NewEvaluator(th Thresholds, opts ...Option) (*Evaluator, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	e := &Evaluator{
		thresholds: th,
		now:        time.Now,
		logger:     slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate runs every check in order. Checks are additive: each one that
// applies contributes its own reason, and none of them stops the others.
func (e *Evaluator) Evaluate(in ScanInput) *EvaluationResult {
	now := e.now()
	th := e.thresholds

	var reasons []Reason
	add := func(code ReasonCode, sev Severity, label string, cat Category) {
		r := Reason{Code: code, Label: label, Severity: sev}
		if cat != "" {
			r.AffectedFiles = dedupe(in.AffectedFiles[cat])
		}
		reasons = append(reasons, r)
	}

	// 1. Baseline
	if in.HealthScore == nil && in.LastScanAt == nil {
		add(ReasonNoBaseline, SeverityWarning, "No baseline scan found; run a project scan first", "")
	}

	// 2. Staleness
	if in.LastScanAt != nil {
		age := now.Sub(*in.LastScanAt).Hours()
		if age > th.StaleScanHours {
			add(ReasonStaleScan, SeverityWarning,
				fmt.Sprintf("Last scan is %.0f hours old (limit %.0f hours)", math.Floor(age), th.StaleScanHours), "")
		}
	} else if in.HealthScore != nil {
		add(ReasonMissingScanTimestamp, SeverityWarning, "Health score has no scan timestamp; its freshness is unknown", "")
	}

	// 3. Health
	if in.HealthScore != nil {
		score := *in.HealthScore
		switch {
		case score < th.MinHealthForCaution:
			add(ReasonCriticalHealthScore, SeverityCritical,
				fmt.Sprintf("Health score %s is below the minimum of %s", formatNumber(score), formatNumber(th.MinHealthForCaution)),
				CategoryHealth)
		case score < th.MinHealthForOK:
			add(ReasonLowHealthScore, SeverityWarning,
				fmt.Sprintf("Health score %s is below the OK threshold of %s", formatNumber(score), formatNumber(th.MinHealthForOK)),
				CategoryHealth)
		}
	}

	// 4. Tests
	if in.FailingSuites > 0 || in.TestStatus == TestsFailing {
		label := "Tests are failing"
		if in.FailingSuites > 0 {
			label = fmt.Sprintf("%d test suite(s) failing", in.FailingSuites)
		}
		add(ReasonTestsFailing, SeverityCritical, label, CategoryTests)
	} else if in.TestStatus == TestsNotRun && th.RequireRecentTests {
		add(ReasonTestsNotRun, SeverityWarning, "Tests have not been run since the last change", CategoryTests)
	}

	// 5. Security
	alerts := in.Security.Count()
	if sec := th.Security; sec != nil {
		switch {
		case in.Security.Critical > 0 && sec.BlockOnCritical:
			add(ReasonSecurityCriticalAlert, SeverityCritical,
				fmt.Sprintf("%d critical security alert(s) open", in.Security.Critical), CategorySecurity)
		case alerts > sec.MaxAlertsForDeploy:
			add(ReasonSecurityOverDeployMax, SeverityCritical,
				fmt.Sprintf("%d security alert(s) exceed the deploy limit of %d", alerts, sec.MaxAlertsForDeploy), CategorySecurity)
		case alerts > sec.MaxAlertsForOK:
			add(ReasonSecurityOverOKMax, SeverityWarning,
				fmt.Sprintf("%d security alert(s) exceed the OK limit of %d", alerts, sec.MaxAlertsForOK), CategorySecurity)
		}
	} else if in.Security.HasAlerts || in.Security.Critical > 0 || alerts > 0 {
		sev := SeverityWarning
		if th.TreatSecurityAlertsAsBlock {
			sev = SeverityCritical
		}
		add(ReasonSecurityAlertsPresent, sev, fmt.Sprintf("Open security alerts (%d)", alerts), CategorySecurity)
	}

	// 6. Issues
	if in.IssueCount > th.MaxIssuesForOK {
		add(ReasonTooManyIssues, SeverityWarning,
			fmt.Sprintf("%d open issues exceed the OK limit of %d", in.IssueCount, th.MaxIssuesForOK), CategoryIssues)
	}

	result := newResult(reasons, now)

	e.logger.Debug("Policy evaluated",
		"status", result.Status,
		"reasons", len(result.Reasons),
		"affectedFiles", len(result.AffectedFiles),
	)
	return result
}

// newResult derives status, summary and the affected-file union from reasons.
func newResult(reasons []Reason, at time.Time) *EvaluationResult {
	if reasons == nil {
		reasons = []Reason{}
	}
	status := StatusFor(reasons)

	var files []string
	for _, r := range reasons {
		files = append(files, r.AffectedFiles...)
	}

	affected := dedupe(files)
	if affected == nil {
		affected = []string{}
	}

	return &EvaluationResult{
		Status:        status,
		Reasons:       reasons,
		AffectedFiles: affected,
		Summary:       summarize(status, reasons),
		EvaluatedAt:   at,
	}
}

// StatusFor is the only place a status is derived: BLOCK if any reason is
// critical, CAUTION if any is a warning, OK otherwise.
func StatusFor(reasons []Reason) Status {
	status := StatusOK
	for _, r := range reasons {
		switch r.Severity {
		case SeverityCritical:
			return StatusBlock
		case SeverityWarning:
			status = StatusCaution
		}
	}
	return status
}

func summarize(status Status, reasons []Reason) string {
	var critical, warnings int
	for _, r := range reasons {
		switch r.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warnings++
		}
	}

	switch status {
	case StatusBlock:
		if warnings > 0 {
			return fmt.Sprintf("Deploy blocked: %d critical reason(s), %d warning(s)", critical, warnings)
		}
		return fmt.Sprintf("Deploy blocked: %d critical reason(s)", critical)
	case StatusCaution:
		return fmt.Sprintf("Deploy with caution: %d warning(s)", warnings)
	default:
		return "All quality checks passed"
	}
}

func dedupe(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.1f", f)
}
