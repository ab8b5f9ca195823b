package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataLayout(t *testing.T) {
	root := filepath.Join("repo", "root")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"data dir", DataDir(root), filepath.Join(root, ".qgate")},
		{"policy", PolicyPath(root), filepath.Join(root, ".qgate", "policy.toml")},
		{"history", HistoryDBPath(root), filepath.Join(root, ".qgate", "history.db")},
		{"metrics", MetricsPath(root), filepath.Join(root, ".qgate", "qgate.prom")},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestEnsureDataDir(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureDataDir(root)
	if err != nil {
		t.Fatalf("EnsureDataDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}

	// Idempotent
	if _, err := EnsureDataDir(root); err != nil {
		t.Errorf("second EnsureDataDir failed: %v", err)
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "abs.json")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"reports/files.json", filepath.Join(root, "reports", "files.json")},
		{`reports\coverage.json`, filepath.Join(root, "reports", "coverage.json")},
		{abs, abs},
	}

	for _, tt := range tests {
		if got := Resolve(root, tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "present.json")
	if err := os.WriteFile(file, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(file) {
		t.Errorf("Exists(%q) = false, want true", file)
	}
	if Exists(filepath.Join(root, "missing.json")) {
		t.Error("Exists(missing) = true, want false")
	}
	if Exists("") {
		t.Error(`Exists("") = true, want false`)
	}
}
