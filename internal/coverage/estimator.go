// Package coverage estimates test coverage from the file index and the
// source-to-test mapping, without running the tests.
package coverage

import (
	"fmt"
	"log/slog"
	"math"
	"path"
	"sort"
	"strings"
	"time"

	"qgate/internal/inventory"
	"qgate/internal/slogutil"
	"qgate/internal/snapshot"
)

// Level is the coarse coverage classification of a file.
type Level string

const (
	LevelNone   Level = "NONE"
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Hint describes the estimated test coverage of one source file.
type Hint struct {
	FilePath          string   `json:"filePath"`
	DisplayName       string   `json:"displayName"`
	Kind              Kind     `json:"kind"`
	HasDirectTests    bool     `json:"hasDirectTests"`
	HasInferredTests  bool     `json:"hasInferredTests"`
	DirectTestFiles   []string `json:"directTestFiles"`
	InferredTestFiles []string `json:"inferredTestFiles"`
	CoverageLevel     Level    `json:"coverageLevel"`
	RiskScore         int      `json:"riskScore"`
	Reasons           []string `json:"reasons"`
}

// Tested reports whether the file has any direct or inferred test.
func (h Hint) Tested() bool {
	return h.HasDirectTests || h.HasInferredTests
}

// Summary aggregates the hints of one analysis.
type Summary struct {
	TotalSourceFiles         int       `json:"totalSourceFiles"`
	TotalTestFiles           int       `json:"totalTestFiles"`
	FilesWithAnyTests        int       `json:"filesWithAnyTests"`
	FilesWithoutTests        int       `json:"filesWithoutTests"`
	EstimatedCoveragePercent int       `json:"estimatedCoveragePercent"`
	HighRiskUntestedCount    int       `json:"highRiskUntestedCount"`
	MediumRiskUntestedCount  int       `json:"mediumRiskUntestedCount"`
	LastAnalyzedAt           time.Time `json:"lastAnalyzedAt"`
}

// AnalysisResult is the output of Analyze.
type AnalysisResult struct {
	Summary Summary `json:"summary"`
	Hints   []Hint  `json:"hints"`
}

// Config tunes the estimator.
type Config struct {
	Filter        inventory.FilterConfig `json:"filter" mapstructure:"filter"`
	KeywordGroups []KeywordGroup         `json:"keywordGroups" mapstructure:"keywordGroups"`
	// HighDirectTests is the number of direct tests that makes coverage HIGH.
	HighDirectTests int `json:"highDirectTests" mapstructure:"highDirectTests"`
	// HighRiskMin is the lowest riskScore counted as high risk.
	HighRiskMin int `json:"highRiskMin" mapstructure:"highRiskMin"`
}

// DefaultConfig returns the estimator defaults.
func DefaultConfig() Config {
	return Config{
		Filter:          inventory.DefaultFilterConfig(),
		KeywordGroups:   DefaultKeywordGroups(),
		HighDirectTests: 2,
		HighRiskMin:     4,
	}
}

const (
	minRiskScore       = 1
	maxRiskScore       = 5
	apiRiskScore       = 3
	elevatedRiskScore  = 2
	fallbackReasonText = "consider adding tests"
)

// Estimator classifies source files. It keeps no state between calls.
type Estimator struct {
	cfg    Config
	filter *inventory.Filter
	logger *slog.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithLogger sets the estimator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEstimator creates an Estimator. Zero-valued config fields take their
// defaults.
func NewEstimator(cfg Config, opts ...Option) *Estimator {
	def := DefaultConfig()
	if cfg.KeywordGroups == nil {
		cfg.KeywordGroups = def.KeywordGroups
	}
	if cfg.HighDirectTests <= 0 {
		cfg.HighDirectTests = def.HighDirectTests
	}
	if cfg.HighRiskMin <= 0 {
		cfg.HighRiskMin = def.HighRiskMin
	}
	e := &Estimator{
		cfg:    cfg,
		filter: inventory.NewFilter(cfg.Filter),
		logger: slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LevelFor classifies coverage from direct and inferred test counts using
// the default HIGH threshold.
func LevelFor(direct, inferred int) Level {
	return levelFor(direct, inferred, DefaultConfig().HighDirectTests)
}

func levelFor(direct, inferred, highDirect int) Level {
	switch {
	case direct >= highDirect:
		return LevelHigh
	case direct >= 1:
		return LevelMedium
	case inferred > 0:
		return LevelLow
	default:
		return LevelNone
	}
}

// Analyze produces one hint per analyzable source file plus the summary.
// Missing inputs yield a zero-filled summary.
func (e *Estimator) Analyze(files []inventory.FileRecord, mapping snapshot.TestMapping, now time.Time) *AnalysisResult {
	if now.IsZero() {
		now = time.Now()
	}

	sources := make([]string, 0, len(files))
	testFiles := make(map[string]bool)
	for _, tf := range mapping.TestFiles() {
		testFiles[inventory.NormalizePath(tf)] = true
	}
	for _, f := range files {
		p := inventory.NormalizePath(f.Path)
		switch {
		case e.filter.Analyzable(f):
			sources = append(sources, p)
		case inventory.IsTestFile(p) && e.filter.IsSource(f) && !e.filter.IsExcluded(p):
			testFiles[p] = true
		}
	}

	bySubject := make(map[string][]string)
	for tf := range testFiles {
		subject := strings.ToLower(inventory.TestSubjectName(tf))
		bySubject[subject] = append(bySubject[subject], tf)
	}
	for subject := range bySubject {
		sort.Strings(bySubject[subject])
	}

	hints := make([]Hint, 0, len(sources))
	for _, src := range sources {
		hints = append(hints, e.hint(src, mapping, bySubject))
	}
	sort.SliceStable(hints, func(i, j int) bool {
		return hints[i].RiskScore > hints[j].RiskScore
	})

	summary := e.summarize(hints, len(testFiles), now)
	e.logger.Debug("Coverage estimate complete",
		"sources", summary.TotalSourceFiles,
		"tests", summary.TotalTestFiles,
		"percent", summary.EstimatedCoveragePercent,
	)
	return &AnalysisResult{Summary: summary, Hints: hints}
}

func (e *Estimator) hint(src string, mapping snapshot.TestMapping, bySubject map[string][]string) Hint {
	direct := dedupe(mapping.TestsFor(src))
	directSet := tokenSet(direct...)

	inferred := []string{}
	for _, tf := range bySubject[strings.ToLower(inventory.BaseName(src))] {
		if !directSet[tf] {
			inferred = append(inferred, tf)
		}
	}

	kind := ClassifyKind(src)
	groups := matchGroups(inventory.Tokens(src), e.cfg.KeywordGroups)
	level := levelFor(len(direct), len(inferred), e.cfg.HighDirectTests)

	h := Hint{
		FilePath:          src,
		DisplayName:       path.Base(src),
		Kind:              kind,
		HasDirectTests:    len(direct) > 0,
		HasInferredTests:  len(inferred) > 0,
		DirectTestFiles:   direct,
		InferredTestFiles: inferred,
		CoverageLevel:     level,
		RiskScore:         riskScore(kind, groups),
	}
	h.Reasons = reasons(h, groups)
	return h
}

// riskScore starts at 1, is raised by kind and is forced to the maximum by
// any sensitive keyword group.
func riskScore(kind Kind, groups []string) int {
	score := minRiskScore
	switch kind {
	case KindAPI:
		score = max(score, apiRiskScore)
	case KindPage, KindHook, KindModel:
		score = max(score, elevatedRiskScore)
	}
	if len(groups) > 0 {
		score = maxRiskScore
	}
	return score
}

func reasons(h Hint, groups []string) []string {
	var out []string
	switch h.CoverageLevel {
	case LevelNone:
		out = append(out, "no direct or inferred tests found")
	case LevelLow:
		out = append(out, fmt.Sprintf("only inferred tests by file name (%d)", len(h.InferredTestFiles)))
	case LevelMedium:
		out = append(out, "covered by 1 direct test")
	case LevelHigh:
		out = append(out, fmt.Sprintf("covered by %d direct tests", len(h.DirectTestFiles)))
	}
	if !h.HasDirectTests {
		switch h.Kind {
		case KindAPI:
			out = append(out, "API surface without direct tests")
		case KindPage, KindHook, KindModel:
			out = append(out, fmt.Sprintf("%s without direct tests", h.Kind))
		}
	}
	for _, g := range groups {
		out = append(out, fmt.Sprintf("touches %s-sensitive code", g))
	}
	if len(out) == 0 {
		out = append(out, fallbackReasonText)
	}
	return out
}

func (e *Estimator) summarize(hints []Hint, testFiles int, now time.Time) Summary {
	s := Summary{
		TotalSourceFiles: len(hints),
		TotalTestFiles:   testFiles,
		LastAnalyzedAt:   now,
	}
	for _, h := range hints {
		if h.Tested() {
			s.FilesWithAnyTests++
			continue
		}
		s.FilesWithoutTests++
		switch {
		case h.RiskScore >= e.cfg.HighRiskMin:
			s.HighRiskUntestedCount++
		case h.RiskScore >= elevatedRiskScore:
			s.MediumRiskUntestedCount++
		}
	}
	if s.TotalSourceFiles > 0 {
		s.EstimatedCoveragePercent = int(math.Round(100 * float64(s.FilesWithAnyTests) / float64(s.TotalSourceFiles)))
	}
	return s
}

func dedupe(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = inventory.NormalizePath(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
