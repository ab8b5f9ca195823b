package snapshot

import (
	"strings"

	"qgate/internal/policy"
)

// ParseScanInput reads the scan summary consumed by the policy evaluator.
// Missing fields stay at their "not reported" zero values.
func ParseScanInput(doc any) policy.ScanInput {
	var in policy.ScanInput
	m, ok := asMap(doc)
	if !ok {
		return in
	}

	if v, ok := field(m, "healthScore", "health", "score"); ok {
		if f, ok := asFloat(v); ok {
			in.HealthScore = &f
		}
	}
	if v, ok := field(m, "lastScanAt", "lastScan", "scannedAt"); ok {
		if t, ok := asTime(v); ok {
			in.LastScanAt = &t
		}
	}

	if v, ok := field(m, "testStatus"); ok {
		s, _ := asString(v)
		in.TestStatus = NormalizeTestStatus(s)
	} else if tests, ok := field(m, "tests"); ok {
		if tm, ok := asMap(tests); ok {
			if v, ok := field(tm, "status"); ok {
				s, _ := asString(v)
				in.TestStatus = NormalizeTestStatus(s)
			}
			if v, ok := field(tm, "failingSuites", "failed"); ok {
				in.FailingSuites, _ = asInt(v)
			}
		}
	}
	if v, ok := field(m, "failingSuites", "failingTests"); ok {
		in.FailingSuites, _ = asInt(v)
	}

	if v, ok := field(m, "security", "securityAlerts"); ok {
		in.Security = parseSecurityAlerts(v)
	}
	if v, ok := field(m, "issueCount", "totalIssues", "issues"); ok {
		if list, isList := asList(v); isList {
			in.IssueCount = len(list)
		} else {
			in.IssueCount, _ = asInt(v)
		}
	}

	if v, ok := field(m, "affectedFiles"); ok {
		if am, ok := asMap(v); ok {
			in.AffectedFiles = make(map[policy.Category][]string, len(am))
			for k, files := range am {
				in.AffectedFiles[policy.Category(k)] = stringList(files)
			}
		}
	}
	return in
}

func parseSecurityAlerts(v any) policy.SecurityAlerts {
	var s policy.SecurityAlerts
	if n, ok := asInt(v); ok {
		s.Total = n
		s.HasAlerts = n > 0
		return s
	}
	m, ok := asMap(v)
	if !ok {
		return s
	}
	if v, ok := field(m, "total", "count"); ok {
		s.Total, _ = asInt(v)
	}
	if v, ok := field(m, "critical"); ok {
		s.Critical, _ = asInt(v)
	}
	if v, ok := field(m, "high"); ok {
		s.High, _ = asInt(v)
	}
	if v, ok := field(m, "medium"); ok {
		s.Medium, _ = asInt(v)
	}
	if v, ok := field(m, "low"); ok {
		s.Low, _ = asInt(v)
	}
	if v, ok := field(m, "hasAlerts"); ok {
		s.HasAlerts, _ = asBool(v)
	}
	return s
}

// NormalizeTestStatus maps runner vocabulary onto the policy test states.
// Unrecognized values return "", which the evaluator treats as not reported.
func NormalizeTestStatus(s string) policy.TestStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passing", "passed", "pass", "success", "ok":
		return policy.TestsPassing
	case "failing", "failed", "fail", "failure", "error":
		return policy.TestsFailing
	case "not_run", "not-run", "notrun", "skipped", "none":
		return policy.TestsNotRun
	default:
		return ""
	}
}
