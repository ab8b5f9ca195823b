// Package risk ranks analyzable files by how urgently they need test
// attention.
package risk

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"qgate/internal/inventory"
	"qgate/internal/slogutil"
	"qgate/internal/snapshot"
)

// RiskLevel buckets an impact score.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Mode names the scoring strategy used for a run.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeBootstrap Mode = "bootstrap"
	ModeEmpty     Mode = "empty"
)

// Factor is one signal's contribution to a file's score.
type Factor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

// FileRiskEntry is the risk assessment of one file.
type FileRiskEntry struct {
	Path        string    `json:"path"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Reasons     []string  `json:"reasons"`
	ImpactScore int       `json:"impactScore"`
	Factors     []Factor  `json:"factors,omitempty"`
}

// Input is what the scorer consumes. Issues and Coverage may be empty.
type Input struct {
	Files    []inventory.FileRecord
	Issues   []snapshot.Issue
	Coverage map[string]float64
	Now      time.Time
}

// Stats counts the files seen by a run.
type Stats struct {
	Indexed    int `json:"indexed"`
	Analyzable int `json:"analyzable"`
	Excluded   int `json:"excluded"`
}

// Result is the ranked output of Score.
type Result struct {
	Entries []FileRiskEntry `json:"entries"`
	Notes   []string        `json:"notes"`
	Mode    Mode            `json:"mode"`
	Stats   Stats           `json:"stats"`
}

// Scorer computes file risk. It keeps no state between calls.
type Scorer struct {
	cfg    Config
	filter *inventory.Filter
	logger *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger sets the scorer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer creates a Scorer. Zero-valued config fields take their defaults.
func NewScorer(cfg Config, opts ...Option) *Scorer {
	cfg = cfg.withDefaults()
	s := &Scorer{
		cfg:    cfg,
		filter: inventory.NewFilter(cfg.Filter),
		logger: slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Scorer) Config() Config {
	return s.cfg
}

// LevelFor maps a score to its bucket.
func LevelFor(score int, cfg Config) RiskLevel {
	switch {
	case score >= cfg.HighThreshold:
		return RiskHigh
	case score >= cfg.MediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Score ranks every analyzable file in the input.
func (s *Scorer) Score(in Input) Result {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	res := Result{
		Entries: []FileRiskEntry{},
		Notes:   []string{},
		Mode:    ModeEmpty,
		Stats:   Stats{Indexed: len(in.Files)},
	}

	if len(in.Files) == 0 {
		res.Notes = append(res.Notes, "no file index available; risk ranking is empty")
		return res
	}

	analyzable, excluded := s.filter.Partition(in.Files)
	res.Stats.Analyzable = len(analyzable)
	res.Stats.Excluded = excluded
	if len(analyzable) == 0 {
		res.Notes = append(res.Notes, fmt.Sprintf("none of the %d indexed files is an analyzable source file", len(in.Files)))
		return res
	}

	coverage := normalizeCoverage(in.Coverage)
	issues := snapshot.GroupIssues(in.Issues)
	hasCoverage := len(coverage) > 0
	hasIssues := len(issues) > 0

	sc := scoring{cfg: s.cfg, now: now, coverage: coverage, issues: issues}
	if hasCoverage || hasIssues {
		res.Mode = ModeNormal
		if !hasCoverage {
			res.Notes = append(res.Notes, "coverage snapshot missing; path heuristic stands in for the coverage signal")
		}
		if !hasIssues {
			res.Notes = append(res.Notes, "issue snapshot missing; path heuristic stands in for the issue signal")
		}
	} else {
		res.Mode = ModeBootstrap
		res.Notes = append(res.Notes, "bootstrap mode: no coverage or issue signals, scoring by path, size and recency")
	}

	entries := make([]FileRiskEntry, 0, len(analyzable))
	for _, f := range analyzable {
		var e FileRiskEntry
		if res.Mode == ModeBootstrap {
			e = sc.bootstrap(f)
		} else {
			e = sc.normal(f, hasCoverage, hasIssues)
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ImpactScore > entries[j].ImpactScore
	})
	if len(entries) > s.cfg.MaxFiles {
		res.Notes = append(res.Notes, fmt.Sprintf("showing top %d of %d analyzable files", s.cfg.MaxFiles, len(entries)))
		entries = entries[:s.cfg.MaxFiles]
	}
	res.Entries = entries

	s.logger.Debug("Risk scoring complete",
		"mode", res.Mode,
		"indexed", res.Stats.Indexed,
		"analyzable", res.Stats.Analyzable,
		"entries", len(res.Entries),
	)
	return res
}

// scoring holds the per-call signal maps.
type scoring struct {
	cfg      Config
	now      time.Time
	coverage map[string]float64
	issues   map[string]snapshot.IssueCounts
}

func (sc scoring) normal(f inventory.FileRecord, hasCoverage, hasIssues bool) FileRiskEntry {
	p := inventory.NormalizePath(f.Path)
	w := sc.cfg.Weights
	var (
		factors []Factor
		reasons []string
	)

	pathScore, matched := sc.cfg.PathHeuristic(p)
	substituted := false

	if hasCoverage {
		pct, ok := sc.coverage[p]
		gap := 1.0
		if ok {
			gap = coverageGap(pct)
			if gap >= 0.5 {
				reasons = append(reasons, fmt.Sprintf("low coverage (%.0f%%)", pct))
			}
		} else {
			reasons = append(reasons, "no coverage recorded")
		}
		factors = append(factors, Factor{Name: "coverage-gap", Weight: w.Coverage, Value: gap})
	} else {
		factors = append(factors, Factor{Name: "path", Weight: w.Coverage * sc.cfg.MissingSignalFactor, Value: pathScore})
		substituted = true
	}

	if hasIssues {
		counts := sc.issues[p]
		density := issueDensity(counts)
		if total := counts.Total(); total > 0 {
			reasons = append(reasons, issueReason(counts))
		}
		factors = append(factors, Factor{Name: "issues", Weight: w.Issues, Value: density})
	} else {
		factors = append(factors, Factor{Name: "path", Weight: w.Issues * sc.cfg.MissingSignalFactor, Value: pathScore})
		substituted = true
	}

	rec := recency(f.LastModified, sc.now, sc.cfg.RecencyWindowDays)
	size := sizePressure(f.SizeBytes, sc.cfg.SizeCeilingBytes)
	factors = append(factors,
		Factor{Name: "recency", Weight: w.Recency, Value: rec},
		Factor{Name: "size", Weight: w.Size, Value: size},
	)
	reasons = append(reasons, sc.sharedReasons(f, rec, size)...)
	if substituted {
		reasons = append(reasons, pathReasons(matched)...)
	}

	return sc.entry(p, factors, reasons)
}

func (sc scoring) bootstrap(f inventory.FileRecord) FileRiskEntry {
	p := inventory.NormalizePath(f.Path)
	w := sc.cfg.BootstrapWeights

	pathScore, matched := sc.cfg.PathHeuristic(p)
	rec := recency(f.LastModified, sc.now, sc.cfg.RecencyWindowDays)
	size := sizePressure(f.SizeBytes, sc.cfg.SizeCeilingBytes)

	factors := []Factor{
		{Name: "path", Weight: w.Path, Value: pathScore},
		{Name: "size", Weight: w.Size, Value: size},
		{Name: "recency", Weight: w.Recency, Value: rec},
	}
	reasons := pathReasons(matched)
	reasons = append(reasons, sc.sharedReasons(f, rec, size)...)

	e := sc.entry(p, factors, reasons)
	// Every analyzable file keeps a positive score in bootstrap mode.
	if e.ImpactScore < 1 {
		e.ImpactScore = 1
		e.RiskLevel = LevelFor(1, sc.cfg)
	}
	return e
}

func (sc scoring) sharedReasons(f inventory.FileRecord, rec, size float64) []string {
	var reasons []string
	if rec >= 0.5 {
		days := ageDays(f.LastModified, sc.now)
		if days == 0 {
			reasons = append(reasons, "changed today")
		} else {
			reasons = append(reasons, fmt.Sprintf("changed %d day(s) ago", days))
		}
	}
	if size >= 0.5 {
		reasons = append(reasons, fmt.Sprintf("large file (%d KB)", f.SizeBytes/1024))
	}
	return reasons
}

func (sc scoring) entry(p string, factors []Factor, reasons []string) FileRiskEntry {
	total := 0.0
	for _, f := range factors {
		total += f.Weight * f.Value
	}
	score := int(math.Round(100 * clamp01(total)))
	if len(reasons) == 0 {
		reasons = []string{"baseline heuristic score"}
	}
	return FileRiskEntry{
		Path:        p,
		RiskLevel:   LevelFor(score, sc.cfg),
		Reasons:     reasons,
		ImpactScore: score,
		Factors:     factors,
	}
}

func issueReason(c snapshot.IssueCounts) string {
	switch {
	case c.Critical > 0:
		return fmt.Sprintf("%d open issue(s), %d critical", c.Total(), c.Critical)
	case c.High > 0:
		return fmt.Sprintf("%d open issue(s), %d high", c.Total(), c.High)
	default:
		return fmt.Sprintf("%d open issue(s)", c.Total())
	}
}

func normalizeCoverage(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for p, pct := range in {
		out[inventory.NormalizePath(p)] = pct
	}
	return out
}
