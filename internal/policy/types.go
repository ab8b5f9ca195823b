// Package policy turns a scan summary into an OK/CAUTION/BLOCK deploy verdict
// with itemized, file-attributable reasons.
package policy

import "time"

// Status is the deploy-readiness verdict.
type Status string

const (
	StatusOK      Status = "OK"
	StatusCaution Status = "CAUTION"
	StatusBlock   Status = "BLOCK"
)

// Severity ranks a single reason.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ReasonCode identifies why a reason was emitted. The set is closed.
type ReasonCode string

const (
	ReasonNoBaseline            ReasonCode = "no_baseline"
	ReasonStaleScan             ReasonCode = "stale_scan"
	ReasonMissingScanTimestamp  ReasonCode = "missing_scan_timestamp"
	ReasonCriticalHealthScore   ReasonCode = "critical_health_score"
	ReasonLowHealthScore        ReasonCode = "low_health_score"
	ReasonTestsFailing          ReasonCode = "tests_failing"
	ReasonTestsNotRun           ReasonCode = "tests_not_run"
	ReasonSecurityCriticalAlert ReasonCode = "security_critical_alert"
	ReasonSecurityOverDeployMax ReasonCode = "security_alerts_over_deploy_limit"
	ReasonSecurityOverOKMax     ReasonCode = "security_alerts_over_ok_limit"
	ReasonSecurityAlertsPresent ReasonCode = "security_alerts_present"
	ReasonTooManyIssues         ReasonCode = "too_many_issues"
)

// AllReasonCodes lists every reason code in evaluation order.
var AllReasonCodes = []ReasonCode{
	ReasonNoBaseline,
	ReasonStaleScan,
	ReasonMissingScanTimestamp,
	ReasonCriticalHealthScore,
	ReasonLowHealthScore,
	ReasonTestsFailing,
	ReasonTestsNotRun,
	ReasonSecurityCriticalAlert,
	ReasonSecurityOverDeployMax,
	ReasonSecurityOverOKMax,
	ReasonSecurityAlertsPresent,
	ReasonTooManyIssues,
}

// Reason is one itemized finding of an evaluation.
type Reason struct {
	Code          ReasonCode `json:"code"`
	Label         string     `json:"label"`
	Severity      Severity   `json:"severity"`
	AffectedFiles []string   `json:"affectedFiles,omitempty"`
}

// EvaluationResult is the verdict plus everything that led to it.
type EvaluationResult struct {
	Status        Status    `json:"status"`
	Reasons       []Reason  `json:"reasons"`
	AffectedFiles []string  `json:"affectedFiles"`
	Summary       string    `json:"summary"`
	EvaluatedAt   time.Time `json:"evaluatedAt"`
}

// TestStatus is the outcome of the most recent test run.
type TestStatus string

const (
	TestsPassing TestStatus = "passing"
	TestsFailing TestStatus = "failing"
	TestsNotRun  TestStatus = "not_run"
)

// Category groups affected files by the check they belong to.
type Category string

const (
	CategoryHealth   Category = "health"
	CategoryTests    Category = "tests"
	CategorySecurity Category = "security"
	CategoryIssues   Category = "issues"
)

// SecurityAlerts carries alert counts at several granularities. Any of them
// may be zero when the scanner does not report it.
type SecurityAlerts struct {
	Total     int  `json:"total"`
	Critical  int  `json:"critical"`
	High      int  `json:"high"`
	Medium    int  `json:"medium"`
	Low       int  `json:"low"`
	HasAlerts bool `json:"hasAlerts"`
}

// Count returns the best known total: the reported total, or the sum of the
// per-severity counts when that is larger.
func (s SecurityAlerts) Count() int {
	sum := s.Critical + s.High + s.Medium + s.Low
	if s.Total > sum {
		return s.Total
	}
	return sum
}

// ScanInput summarizes the latest scan of a project. Nil pointers and zero
// values mean "not reported".
type ScanInput struct {
	HealthScore   *float64              `json:"healthScore,omitempty"`
	LastScanAt    *time.Time            `json:"lastScanAt,omitempty"`
	TestStatus    TestStatus            `json:"testStatus,omitempty"`
	FailingSuites int                   `json:"failingSuites"`
	Security      SecurityAlerts        `json:"security"`
	IssueCount    int                   `json:"issueCount"`
	AffectedFiles map[Category][]string `json:"affectedFiles,omitempty"`
}
