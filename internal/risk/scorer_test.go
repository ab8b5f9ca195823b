package risk

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"qgate/internal/inventory"
	"qgate/internal/snapshot"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func file(path string, size int64, age time.Duration) inventory.FileRecord {
	r := inventory.FileRecord{Path: path, SizeBytes: size}
	if age >= 0 {
		r.LastModified = testNow.Add(-age)
	}
	return r
}

func TestLevelFor(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{100, RiskHigh},
		{70, RiskHigh},
		{69, RiskMedium},
		{40, RiskMedium},
		{39, RiskLow},
		{0, RiskLow},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.score, cfg); got != tt.want {
			t.Errorf("LevelFor(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestPathHeuristic(t *testing.T) {
	tests := []struct {
		path string
		want float64
	}{
		{"src/a.ts", 0.3},
		{"src/api/users.ts", 0.7},
		{"src/components/Button.tsx", 0.5},
		{"src/services/authService.ts", 1.0},
		{"src/billing/charge.ts", 0.75},
		{"src/lib/payments/api/stripe.ts", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, _ := DefaultConfig().PathHeuristic(tt.path)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("PathHeuristic(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestScore_EmptyIndex(t *testing.T) {
	res := NewScorer(DefaultConfig()).Score(Input{Now: testNow})

	if res.Entries == nil || len(res.Entries) != 0 {
		t.Fatalf("Entries = %v, want empty non-nil slice", res.Entries)
	}
	if res.Mode != ModeEmpty {
		t.Errorf("Mode = %v, want %v", res.Mode, ModeEmpty)
	}
	if len(res.Notes) == 0 {
		t.Error("expected a note explaining the missing index")
	}
}

func TestScore_FiltersNonAnalyzable(t *testing.T) {
	files := []inventory.FileRecord{
		file("src/a.ts", 100, time.Hour),
		file("node_modules/lib/index.js", 100, time.Hour),
		file("src/a.test.ts", 100, time.Hour),
		file("README.md", 100, time.Hour),
		file("src/b.go", 100, time.Hour),
	}

	res := NewScorer(DefaultConfig()).Score(Input{Files: files, Now: testNow})

	want := Stats{Indexed: 5, Analyzable: 2, Excluded: 3}
	if res.Stats != want {
		t.Errorf("Stats = %+v, want %+v", res.Stats, want)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(res.Entries))
	}
}

func TestScore_BootstrapCompleteness(t *testing.T) {
	files := []inventory.FileRecord{
		file("src/a.ts", 0, -1),
		file("src/billing/charge.ts", 10*1024, 2*24*time.Hour),
		file("src/components/Card.tsx", 0, 90*24*time.Hour),
		file("x.py", 0, -1),
	}

	res := NewScorer(DefaultConfig()).Score(Input{Files: files, Now: testNow})

	if res.Mode != ModeBootstrap {
		t.Fatalf("Mode = %v, want %v", res.Mode, ModeBootstrap)
	}
	if len(res.Entries) != len(files) {
		t.Fatalf("len(Entries) = %d, want %d", len(res.Entries), len(files))
	}
	for _, e := range res.Entries {
		if e.ImpactScore <= 0 {
			t.Errorf("%s: ImpactScore = %d, want > 0", e.Path, e.ImpactScore)
		}
		if len(e.Reasons) == 0 {
			t.Errorf("%s: no reasons", e.Path)
		}
	}
	if res.Entries[0].Path != "src/billing/charge.ts" {
		t.Errorf("top entry = %s, want src/billing/charge.ts", res.Entries[0].Path)
	}
	if !containsNote(res.Notes, "bootstrap") {
		t.Errorf("Notes = %v, want a bootstrap note", res.Notes)
	}
}

func TestScore_CoverageOnly(t *testing.T) {
	files := []inventory.FileRecord{file("src/a.ts", 0, -1)}
	res := NewScorer(DefaultConfig()).Score(Input{
		Files:    files,
		Coverage: map[string]float64{"src/a.ts": 0},
		Now:      testNow,
	})

	if res.Mode != ModeNormal {
		t.Fatalf("Mode = %v, want %v", res.Mode, ModeNormal)
	}
	// 0.4*1 (gap) + 0.3*0.6*0.3 (path stand-in for issues) = 0.454
	if got := res.Entries[0].ImpactScore; got != 45 {
		t.Errorf("ImpactScore = %d, want 45", got)
	}
	if got := res.Entries[0].RiskLevel; got != RiskMedium {
		t.Errorf("RiskLevel = %v, want %v", got, RiskMedium)
	}
	if !containsNote(res.Notes, "issue snapshot missing") {
		t.Errorf("Notes = %v, want missing-issues note", res.Notes)
	}
}

func TestScore_AllSignals(t *testing.T) {
	files := []inventory.FileRecord{file("src/a.ts", 40*1024, 0)}
	res := NewScorer(DefaultConfig()).Score(Input{
		Files:    files,
		Coverage: map[string]float64{"./src/a.ts": 100},
		Issues: []snapshot.Issue{
			{Path: "src/a.ts", Severity: snapshot.SeverityCritical},
			{Path: "src/a.ts", Severity: snapshot.SeverityCritical},
		},
		Now: testNow,
	})

	// gap 0, issues 0.3*0.6, recency 0.2*1, size 0.1*1 = 0.48
	e := res.Entries[0]
	if e.ImpactScore != 48 {
		t.Errorf("ImpactScore = %d, want 48", e.ImpactScore)
	}
	if len(e.Factors) != 4 {
		t.Errorf("len(Factors) = %d, want 4", len(e.Factors))
	}
	if !containsNote(e.Reasons, "2 critical") {
		t.Errorf("Reasons = %v, want critical issue reason", e.Reasons)
	}
	if len(res.Notes) != 0 {
		t.Errorf("Notes = %v, want none", res.Notes)
	}
}

func TestScore_MissingFromCoverageMapCountsAsUncovered(t *testing.T) {
	files := []inventory.FileRecord{
		file("src/covered.ts", 0, -1),
		file("src/uncovered.ts", 0, -1),
	}
	res := NewScorer(DefaultConfig()).Score(Input{
		Files:    files,
		Coverage: map[string]float64{"src/covered.ts": 90},
		Now:      testNow,
	})

	if res.Entries[0].Path != "src/uncovered.ts" {
		t.Errorf("top entry = %s, want src/uncovered.ts", res.Entries[0].Path)
	}
	if !containsNote(res.Entries[0].Reasons, "no coverage recorded") {
		t.Errorf("Reasons = %v", res.Entries[0].Reasons)
	}
}

func TestScore_TruncatesAndKeepsStableOrder(t *testing.T) {
	files := make([]inventory.FileRecord, 0, 60)
	for i := 0; i < 60; i++ {
		files = append(files, file(fmt.Sprintf("src/f%02d.ts", i), 0, -1))
	}

	res := NewScorer(DefaultConfig()).Score(Input{Files: files, Now: testNow})

	if len(res.Entries) != 50 {
		t.Fatalf("len(Entries) = %d, want 50", len(res.Entries))
	}
	for i, e := range res.Entries {
		want := fmt.Sprintf("src/f%02d.ts", i)
		if e.Path != want {
			t.Fatalf("Entries[%d] = %s, want %s", i, e.Path, want)
		}
	}
	if !containsNote(res.Notes, "top 50 of 60") {
		t.Errorf("Notes = %v, want truncation note", res.Notes)
	}
}

func TestScore_SortedDescending(t *testing.T) {
	files := []inventory.FileRecord{
		file("src/a.ts", 0, -1),
		file("src/api/route.ts", 50*1024, 0),
		file("src/utils/format.ts", 1024, 10*24*time.Hour),
	}
	res := NewScorer(Config{MaxFiles: 2}).Score(Input{Files: files, Now: testNow})

	if len(res.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(res.Entries))
	}
	for i := 1; i < len(res.Entries); i++ {
		if res.Entries[i-1].ImpactScore < res.Entries[i].ImpactScore {
			t.Errorf("entries not sorted: %d < %d", res.Entries[i-1].ImpactScore, res.Entries[i].ImpactScore)
		}
	}
}

func TestRecency(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"today", 0, 1},
		{"half window", 15 * 24 * time.Hour, 0.5},
		{"window", 30 * 24 * time.Hour, 0},
		{"older", 90 * 24 * time.Hour, 0},
		{"future", -time.Hour, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recency(testNow.Add(-tt.age), testNow, 30)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("recency() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := recency(time.Time{}, testNow, 30); got != 0 {
		t.Errorf("recency(zero) = %v, want 0", got)
	}
}

func TestIssueDensity(t *testing.T) {
	tests := []struct {
		counts snapshot.IssueCounts
		want   float64
	}{
		{snapshot.IssueCounts{}, 0},
		{snapshot.IssueCounts{Critical: 1}, 0.3},
		{snapshot.IssueCounts{High: 1, Medium: 1, Low: 2}, 0.4},
		{snapshot.IssueCounts{Critical: 5}, 1},
	}

	for _, tt := range tests {
		got := issueDensity(tt.counts)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("issueDensity(%+v) = %v, want %v", tt.counts, got, tt.want)
		}
	}
}

func containsNote(notes []string, substr string) bool {
	for _, n := range notes {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}
