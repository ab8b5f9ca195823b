// Package inventory describes indexed project files and decides which of them
// are analyzable source files.
package inventory

import (
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// FileRecord is a single entry of the project file index.
type FileRecord struct {
	Path         string    `json:"path"`
	Ext          string    `json:"ext,omitempty"`
	Language     string    `json:"language,omitempty"`
	SizeBytes    int64     `json:"sizeBytes"`
	LastModified time.Time `json:"lastModified"`
}

// Extension returns the record's extension, falling back to the path suffix.
func (r FileRecord) Extension() string {
	if r.Ext != "" {
		if !strings.HasPrefix(r.Ext, ".") {
			return "." + strings.ToLower(r.Ext)
		}
		return strings.ToLower(r.Ext)
	}
	return strings.ToLower(path.Ext(r.Path))
}

// FilterConfig configures which files count as analyzable.
type FilterConfig struct {
	SourceExtensions []string `json:"sourceExtensions" mapstructure:"sourceExtensions"`
	ExcludeDirs      []string `json:"excludeDirs" mapstructure:"excludeDirs"`
	ExcludeGlobs     []string `json:"excludeGlobs" mapstructure:"excludeGlobs"`
}

// DefaultFilterConfig returns the recognized source extensions and the build,
// dependency and VCS directories that are never analyzed.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		SourceExtensions: []string{
			".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".vue", ".svelte",
			".py", ".go", ".java", ".kt", ".rs", ".rb", ".php", ".cs", ".swift",
		},
		ExcludeDirs: []string{
			"node_modules", "dist", "build", "out", ".next", ".nuxt", "coverage",
			".git", ".svn", ".hg", "vendor", "target", "__pycache__", ".turbo",
			".cache", ".venv", "venv", ".qgate",
		},
		ExcludeGlobs: []string{"**/*.d.ts", "**/*.min.js"},
	}
}

// Filter classifies file paths.
type Filter struct {
	extensions  map[string]bool
	excludeDirs map[string]bool
	globs       []string
}

// NewFilter builds a Filter. Empty lists in cfg fall back to the defaults.
func NewFilter(cfg FilterConfig) *Filter {
	def := DefaultFilterConfig()
	if len(cfg.SourceExtensions) == 0 {
		cfg.SourceExtensions = def.SourceExtensions
	}
	if len(cfg.ExcludeDirs) == 0 {
		cfg.ExcludeDirs = def.ExcludeDirs
	}

	f := &Filter{
		extensions:  make(map[string]bool, len(cfg.SourceExtensions)),
		excludeDirs: make(map[string]bool, len(cfg.ExcludeDirs)),
		globs:       cfg.ExcludeGlobs,
	}
	for _, ext := range cfg.SourceExtensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = true
	}
	for _, dir := range cfg.ExcludeDirs {
		f.excludeDirs[dir] = true
	}
	return f
}

// IsSource reports whether the record has a recognized source extension.
func (f *Filter) IsSource(r FileRecord) bool {
	return f.extensions[r.Extension()]
}

// IsExcluded reports whether p lives under an excluded directory or matches
// an exclude glob.
func (f *Filter) IsExcluded(p string) bool {
	p = NormalizePath(p)
	segments := strings.Split(p, "/")
	for _, seg := range segments[:len(segments)-1] {
		if f.excludeDirs[seg] {
			return true
		}
	}
	for _, pattern := range f.globs {
		if matched, err := doublestar.Match(pattern, p); err == nil && matched {
			return true
		}
	}
	return false
}

// Analyzable reports whether the record is a non-test source file outside the
// excluded directories.
func (f *Filter) Analyzable(r FileRecord) bool {
	if r.Path == "" {
		return false
	}
	return f.IsSource(r) && !f.IsExcluded(r.Path) && !IsTestFile(r.Path)
}

// Partition splits files into analyzable source files and the rest.
// The relative order of analyzable files is preserved.
func (f *Filter) Partition(files []FileRecord) (analyzable []FileRecord, excluded int) {
	analyzable = make([]FileRecord, 0, len(files))
	for _, r := range files {
		if f.Analyzable(r) {
			analyzable = append(analyzable, r)
			continue
		}
		excluded++
	}
	return analyzable, excluded
}

// testDirs are directory names whose contents are always test code.
var testDirs = map[string]bool{
	"test":      true,
	"tests":     true,
	"__tests__": true,
}

// IsTestFile reports whether p names a test file, either by its name
// (.test., .spec., _test., test_ prefix) or by living under a tests directory.
func IsTestFile(p string) bool {
	p = NormalizePath(p)
	segments := strings.Split(p, "/")
	for _, seg := range segments[:len(segments)-1] {
		if testDirs[strings.ToLower(seg)] {
			return true
		}
	}

	name := strings.ToLower(segments[len(segments)-1])
	if strings.Contains(name, ".test.") || strings.Contains(name, ".spec.") || strings.Contains(name, "_test.") {
		return true
	}
	return strings.HasPrefix(name, "test_") && strings.HasSuffix(name, ".py")
}

// NormalizePath converts separators to forward slashes and drops a leading "./".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// BaseName returns the file name without directories or extension.
func BaseName(p string) string {
	name := path.Base(NormalizePath(p))
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// TestSubjectName strips test markers from a test file name so it can be
// compared with the base name of the file it exercises.
func TestSubjectName(p string) string {
	name := BaseName(p)
	for _, marker := range []string{".test", ".spec", "_test"} {
		name = strings.TrimSuffix(name, marker)
	}
	return strings.TrimPrefix(name, "test_")
}

// Tokens splits a path into lower-case words on separators, punctuation and
// camelCase boundaries, so "src/authService.ts" yields [src auth service ts].
func Tokens(p string) []string {
	var (
		tokens []string
		cur    []rune
	)
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(NormalizePath(p))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && len(cur) > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					flush()
				}
			}
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
