// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Repo is a throwaway repository root.
type Repo struct {
	// Root is the absolute path to the repository
	Root string
}

// NewRepo creates an empty repository in a test temp dir.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	return &Repo{Root: t.TempDir()}
}

// Path returns the absolute path of a repository-relative name.
func (r *Repo) Path(name string) string {
	return filepath.Join(r.Root, filepath.FromSlash(name))
}

// Write creates name with content, including parent directories, and
// returns its absolute path.
func (r *Repo) Write(t *testing.T, name, content string) string {
	t.Helper()
	p := r.Path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return p
}

// WriteAll writes every name/content pair.
func (r *Repo) WriteAll(t *testing.T, files map[string]string) {
	t.Helper()
	for name, content := range files {
		r.Write(t, name, content)
	}
}

// Snapshot names inside the .qgate directory.
const (
	FilesSnapshot    = ".qgate/files.json"
	CoverageSnapshot = ".qgate/coverage.json"
	IssuesSnapshot   = ".qgate/issues.json"
	MappingSnapshot  = ".qgate/test-mapping.json"
	ScanSnapshot     = ".qgate/scan.json"
	PolicyFile       = ".qgate/policy.toml"
)

// WebApp is a small TypeScript project: an API route with a major issue, a
// component, a tested library module and a passing, recent scan.
var WebApp = map[string]string{
	FilesSnapshot: `{"files": [
		{"path": "src/api/users.ts", "sizeBytes": 12000},
		{"path": "src/components/Button.tsx", "sizeBytes": 3000},
		{"path": "src/lib/format.ts", "sizeBytes": 800},
		{"path": "src/lib/format.test.ts", "sizeBytes": 400}
	]}`,
	CoverageSnapshot: `{"totalCoverage": 20}`,
	IssuesSnapshot:   `[{"path": "src/api/users.ts", "severity": "major"}]`,
	MappingSnapshot:  `{"sourceToTests": {"src/lib/format.ts": ["src/lib/format.test.ts"]}}`,
	ScanSnapshot: `healthScore: 92
lastScanAt: "2026-03-01T10:00:00Z"
testStatus: passing
issueCount: 1
`,
}

// LenientPolicy passes WebApp.
const LenientPolicy = `min_health_for_ok = 80
min_health_for_caution = 50
max_issues_for_ok = 10
stale_scan_hours = 24
`
