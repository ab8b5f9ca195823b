package snapshot

import (
	"strings"

	"qgate/internal/inventory"
)

// Severity is the closed set of issue severities used for scoring.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// NormalizeSeverity maps the open vocabulary of linters and scanners onto
// Severity:
//
//	critical, blocker -> critical
//	high, major       -> high
//	low, minor        -> low
//	anything else     -> medium
func NormalizeSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "blocker":
		return SeverityCritical
	case "high", "major":
		return SeverityHigh
	case "low", "minor":
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// Issue is a single static-analysis finding attributed to a file.
type Issue struct {
	Path     string   `json:"path"`
	Severity Severity `json:"severity"`
}

// ParseIssues accepts a bare list or a document wrapping the list under
// "issues", "findings" or "items". Entries without a path are dropped.
func ParseIssues(doc any) []Issue {
	list, ok := asList(doc)
	if !ok {
		m, isMap := asMap(doc)
		if !isMap {
			return nil
		}
		v, found := field(m, "issues", "findings", "items")
		if !found {
			return nil
		}
		if list, ok = asList(v); !ok {
			return nil
		}
	}

	issues := make([]Issue, 0, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		var p string
		if v, ok := field(m, "filePath", "path", "file"); ok {
			p, _ = asString(v)
		}
		if p == "" {
			continue
		}
		var sev string
		if v, ok := field(m, "severity", "level"); ok {
			sev, _ = asString(v)
		}
		issues = append(issues, Issue{
			Path:     inventory.NormalizePath(p),
			Severity: NormalizeSeverity(sev),
		})
	}
	return issues
}

// IssueCounts tallies issues per severity for one file.
type IssueCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Total returns the number of issues across severities.
func (c IssueCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}

// Add records one issue of the given severity.
func (c *IssueCounts) Add(s Severity) {
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityLow:
		c.Low++
	default:
		c.Medium++
	}
}

// GroupIssues builds the per-file issue map.
func GroupIssues(issues []Issue) map[string]IssueCounts {
	out := make(map[string]IssueCounts)
	for _, is := range issues {
		c := out[is.Path]
		c.Add(is.Severity)
		out[is.Path] = c
	}
	return out
}
