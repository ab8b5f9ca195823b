// Package suggest turns risk rankings into prioritized test suggestions with
// scaffolds and a projected coverage gain.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"qgate/internal/inventory"
	"qgate/internal/risk"
	"qgate/internal/slogutil"
	"qgate/internal/snapshot"
)

// Input is what the generator consumes.
type Input struct {
	Risk  risk.Result
	Files []inventory.FileRecord
	// CoverageSnapshot is the decoded coverage document, probed for the
	// baseline. Nil means no snapshot.
	CoverageSnapshot any
	// MaxFiles is reported in the debug snapshot.
	MaxFiles int
}

// Generator produces test suggestions. It keeps no state between calls.
type Generator struct {
	cfg      Config
	enhancer Enhancer
	idFunc   func() string
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithEnhancer installs the enhancement step. It only runs when the
// enhancement config is enabled.
func WithEnhancer(e Enhancer) Option {
	return func(g *Generator) {
		g.enhancer = e
	}
}

// WithIDFunc overrides the suggestion id source.
func WithIDFunc(f func() string) Option {
	return func(g *Generator) {
		if f != nil {
			g.idFunc = f
		}
	}
}

// WithLogger sets the generator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a Generator. Zero-valued config fields take their
// defaults.
func NewGenerator(cfg Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:    cfg.withDefaults(),
		idFunc: uuid.NewString,
		logger: slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate builds suggestions for the ranked files. It never fails: an
// enhancement failure is logged and the static suggestions are returned.
func (g *Generator) Generate(ctx context.Context, in Input) *Output {
	records := make(map[string]inventory.FileRecord, len(in.Files))
	for _, f := range in.Files {
		records[inventory.NormalizePath(f.Path)] = f
	}

	entries := in.Risk.Entries
	if entries == nil {
		entries = []risk.FileRiskEntry{}
	}

	suggestions := make([]TestSuggestion, 0, len(entries))
	for _, e := range entries {
		suggestions = append(suggestions, g.suggestionFor(e, records[e.Path]))
	}
	sortSuggestions(suggestions)
	if len(suggestions) > g.cfg.MaxSuggestions {
		suggestions = suggestions[:g.cfg.MaxSuggestions]
	}

	notes := append([]string{}, in.Risk.Notes...)
	enhancement := "disabled"
	if g.cfg.Enhancement.Enabled && g.enhancer != nil && len(suggestions) > 0 {
		merged, err := g.enhance(ctx, suggestions)
		if err != nil {
			g.logger.Warn("Test suggestion enhancement failed, using static suggestions",
				"error", err.Error(),
				"suggestions", len(suggestions),
			)
			enhancement = "fallback"
			notes = append(notes, "enhancement failed; static suggestions used")
		} else {
			enhancement = "applied"
			suggestions = merged
		}
	}

	baseline, baselineSource, _ := snapshot.ProbeBaseline(in.CoverageSnapshot)
	proj := Project(baseline, suggestions, g.cfg.Projection)

	out := &Output{
		Risks:             entries,
		Suggestions:       suggestions,
		BaselineCoverage:  proj.Baseline,
		ProjectedCoverage: proj.Projected,
		Debug: Debug{
			IndexedFiles:      in.Risk.Stats.Indexed,
			AnalyzableFiles:   in.Risk.Stats.Analyzable,
			ExcludedFiles:     in.Risk.Stats.Excluded,
			MaxFiles:          in.MaxFiles,
			MaxSuggestions:    g.cfg.MaxSuggestions,
			RiskEntries:       len(entries),
			Suggestions:       len(suggestions),
			BaselineCoverage:  proj.Baseline,
			BaselineSource:    baselineSource,
			ProjectedCoverage: proj.Projected,
			Mode:              in.Risk.Mode,
			Enhancement:       enhancement,
			Notes:             notes,
		},
	}

	g.logger.Debug("Generated test suggestions",
		"suggestions", len(suggestions),
		"baseline", proj.Baseline,
		"projected", proj.Projected,
		"enhancement", enhancement,
	)
	return out
}

func (g *Generator) suggestionFor(e risk.FileRiskEntry, rec inventory.FileRecord) TestSuggestion {
	kind := ClassifyFile(e.Path)
	if kind == FileKindGeneric && componentExts[rec.Extension()] {
		kind = FileKindComponent
	}
	symbol := InferSymbol(e.Path, kind)
	priority := PriorityFor(e.ImpactScore, g.cfg)
	gain := GainFor(priority, g.cfg)

	s := TestSuggestion{
		ID:                    g.idFunc(),
		FilePath:              e.Path,
		SymbolName:            symbol,
		Kind:                  TestKindFor(kind),
		Description:           describe(e, kind, symbol),
		Priority:              priority,
		EstimatedCoverageGain: &gain,
		Source:                SourceStatic,
	}

	snippet, err := Render(TemplateFor(kind), TemplateData{
		Symbol:     symbol,
		ImportPath: ImportPath(e.Path, g.cfg),
		FilePath:   e.Path,
	})
	if err != nil {
		g.logger.Warn("Failed to render test scaffold", "path", e.Path, "error", err.Error())
	} else {
		s.Snippet = snippet
	}
	return s
}

func describe(e risk.FileRiskEntry, kind FileKind, symbol string) string {
	var what string
	switch kind {
	case FileKindAPI:
		what = fmt.Sprintf("Add integration tests for the API route in %s", e.Path)
	case FileKindComponent:
		what = fmt.Sprintf("Add render tests for <%s /> in %s", symbol, e.Path)
	default:
		what = fmt.Sprintf("Add unit tests for %s in %s", symbol, e.Path)
	}
	why := fmt.Sprintf("%s risk, score %d", e.RiskLevel, e.ImpactScore)
	if len(e.Reasons) > 0 {
		why += ": " + strings.Join(e.Reasons, "; ")
	}
	return what + " (" + why + ")"
}

// sortSuggestions orders by priority, then by declared gain descending.
// Equal suggestions keep their relative order.
func sortSuggestions(s []TestSuggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		if ri, rj := s[i].Priority.rank(), s[j].Priority.rank(); ri != rj {
			return ri < rj
		}
		return s[i].Gain() > s[j].Gain()
	})
}
