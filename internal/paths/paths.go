// Package paths knows where qgate keeps its per-repository files.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirName is the per-repository directory holding config and state.
	DataDirName = ".qgate"
	// ConfigName is the config file base name; viper picks the extension.
	ConfigName = "config"
	// PolicyFileName is the default threshold file.
	PolicyFileName = "policy.toml"
	// HistoryDBName is the run history database.
	HistoryDBName = "history.db"
	// MetricsFileName is the default node-exporter textfile.
	MetricsFileName = "qgate.prom"
)

// DataDir returns <repoRoot>/.qgate.
func DataDir(repoRoot string) string {
	return filepath.Join(repoRoot, DataDirName)
}

// EnsureDataDir creates the data directory if needed and returns it.
func EnsureDataDir(repoRoot string) (string, error) {
	dir := DataDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// PolicyPath returns the default policy file location.
func PolicyPath(repoRoot string) string {
	return filepath.Join(DataDir(repoRoot), PolicyFileName)
}

// HistoryDBPath returns the run history database location.
func HistoryDBPath(repoRoot string) string {
	return filepath.Join(DataDir(repoRoot), HistoryDBName)
}

// MetricsPath returns the default metrics textfile location.
func MetricsPath(repoRoot string) string {
	return filepath.Join(DataDir(repoRoot), MetricsFileName)
}

// Resolve joins a slash-separated path onto repoRoot unless it is already
// absolute. Empty paths stay empty.
func Resolve(repoRoot, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	parts := strings.Split(strings.ReplaceAll(p, "\\", "/"), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// Exists reports whether p names an existing file or directory.
func Exists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
