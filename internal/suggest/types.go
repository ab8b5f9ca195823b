package suggest

import (
	"qgate/internal/risk"
)

// Priority ranks a suggestion. P0 sorts first.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

func (p Priority) rank() int {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 1
	default:
		return 2
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityP0 || p == PriorityP1 || p == PriorityP2
}

// TestKind is the kind of test a suggestion proposes.
type TestKind string

const (
	TestKindUnit        TestKind = "unit"
	TestKindIntegration TestKind = "integration"
)

// Valid reports whether k is one of the known test kinds.
func (k TestKind) Valid() bool {
	return k == TestKindUnit || k == TestKindIntegration
}

// Source records which pass produced a suggestion.
type Source string

const (
	SourceStatic   Source = "static"
	SourceAIHybrid Source = "ai-hybrid"
	SourceAIFull   Source = "ai-full"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	return s == SourceStatic || s == SourceAIHybrid || s == SourceAIFull
}

// FileKind is the generator's coarse view of a file's role.
type FileKind string

const (
	FileKindAPI       FileKind = "api"
	FileKindComponent FileKind = "component"
	FileKindGeneric   FileKind = "generic"
)

// TestSuggestion proposes one test for one file.
type TestSuggestion struct {
	ID                    string   `json:"id"`
	FilePath              string   `json:"filePath"`
	SymbolName            string   `json:"symbolName,omitempty"`
	Kind                  TestKind `json:"kind"`
	Description           string   `json:"description"`
	Priority              Priority `json:"priority"`
	EstimatedCoverageGain *float64 `json:"estimatedCoverageGain,omitempty"`
	Snippet               string   `json:"snippet,omitempty"`
	Source                Source   `json:"source"`
}

// Gain returns the declared coverage gain, or 0 when none is declared.
func (s TestSuggestion) Gain() float64 {
	if s.EstimatedCoverageGain == nil {
		return 0
	}
	return *s.EstimatedCoverageGain
}

func (s TestSuggestion) clone() TestSuggestion {
	if s.EstimatedCoverageGain != nil {
		g := *s.EstimatedCoverageGain
		s.EstimatedCoverageGain = &g
	}
	return s
}

// Debug summarizes a generation pass for diagnostics.
type Debug struct {
	IndexedFiles      int       `json:"indexedFiles"`
	AnalyzableFiles   int       `json:"analyzableFiles"`
	ExcludedFiles     int       `json:"excludedFiles"`
	MaxFiles          int       `json:"maxFiles"`
	MaxSuggestions    int       `json:"maxSuggestions"`
	RiskEntries       int       `json:"riskEntries"`
	Suggestions       int       `json:"suggestions"`
	BaselineCoverage  float64   `json:"baselineCoverage"`
	BaselineSource    string    `json:"baselineSource,omitempty"`
	ProjectedCoverage float64   `json:"projectedCoverage"`
	Mode              risk.Mode `json:"mode"`
	Enhancement       string    `json:"enhancement"`
	Notes             []string  `json:"notes"`
}

// Output is the result of Generate.
type Output struct {
	Risks             []risk.FileRiskEntry `json:"risks"`
	Suggestions       []TestSuggestion     `json:"suggestions"`
	BaselineCoverage  float64              `json:"baselineCoverage"`
	ProjectedCoverage float64              `json:"projectedCoverage"`
	Debug             Debug                `json:"debug"`
}
