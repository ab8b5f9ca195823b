package suggest

import (
	"path"
	"strings"

	"qgate/internal/coverage"
	"qgate/internal/inventory"
)

// apiPlaceholderSymbol names the handler of API route files, whose file
// name rarely matches an exported symbol.
const apiPlaceholderSymbol = "handleRequest"

var componentExts = map[string]bool{".tsx": true, ".jsx": true, ".vue": true, ".svelte": true}

// ClassifyFile decides how a file is tested: API routes get integration
// tests, UI files component tests, everything else generic unit tests.
func ClassifyFile(p string) FileKind {
	switch coverage.ClassifyKind(p) {
	case coverage.KindAPI:
		return FileKindAPI
	case coverage.KindComponent, coverage.KindPage:
		return FileKindComponent
	}
	if componentExts[strings.ToLower(path.Ext(p))] {
		return FileKindComponent
	}
	return FileKindGeneric
}

// TestKindFor returns the test kind for a file kind.
func TestKindFor(k FileKind) TestKind {
	if k == FileKindAPI {
		return TestKindIntegration
	}
	return TestKindUnit
}

// InferSymbol guesses the symbol under test from the file name. Index files
// take the name of their directory.
func InferSymbol(p string, kind FileKind) string {
	if kind == FileKindAPI {
		return apiPlaceholderSymbol
	}

	p = inventory.NormalizePath(p)
	name := inventory.BaseName(p)
	if strings.EqualFold(name, "index") || strings.EqualFold(name, "page") {
		if dir := path.Base(path.Dir(p)); dir != "." && dir != "/" {
			name = dir
		}
	}

	words := inventory.Tokens(name)
	if len(words) == 0 {
		if kind == FileKindComponent {
			return "Component"
		}
		return "subject"
	}

	var b strings.Builder
	for i, w := range words {
		if i == 0 && kind != FileKindComponent {
			b.WriteString(w)
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	return b.String()
}

// ImportPath turns a file path into an aliased module specifier:
// src/lib/math.ts becomes @/lib/math.
func ImportPath(p string, cfg Config) string {
	p = inventory.NormalizePath(p)
	for _, root := range cfg.SourceRoots {
		root = strings.TrimSuffix(inventory.NormalizePath(root), "/") + "/"
		if strings.HasPrefix(p, root) {
			p = strings.TrimPrefix(p, root)
			break
		}
	}
	p = strings.TrimSuffix(p, path.Ext(p))
	p = strings.TrimSuffix(p, "/index")
	return cfg.ImportAlias + strings.TrimPrefix(p, "/")
}
