package snapshot

import (
	"sort"

	"qgate/internal/inventory"
)

// TestMapping relates source files to the test files that exercise them.
type TestMapping struct {
	SourceToTests map[string][]string `json:"sourceToTests"`
	TestsToSource map[string][]string `json:"testsToSource"`
}

// ParseTestMapping reads {sourceToTests, testsToSource}. When only one
// direction is present the other is derived from it.
func ParseTestMapping(doc any) TestMapping {
	mapping := TestMapping{
		SourceToTests: map[string][]string{},
		TestsToSource: map[string][]string{},
	}
	m, ok := asMap(doc)
	if !ok {
		return mapping
	}

	if v, ok := field(m, "sourceToTests"); ok {
		mapping.SourceToTests = parsePathMap(v)
	}
	if v, ok := field(m, "testsToSource"); ok {
		mapping.TestsToSource = parsePathMap(v)
	}

	switch {
	case len(mapping.SourceToTests) == 0 && len(mapping.TestsToSource) > 0:
		mapping.SourceToTests = invert(mapping.TestsToSource)
	case len(mapping.TestsToSource) == 0 && len(mapping.SourceToTests) > 0:
		mapping.TestsToSource = invert(mapping.SourceToTests)
	}
	return mapping
}

// TestsFor returns the direct tests of a source file.
func (t TestMapping) TestsFor(source string) []string {
	return t.SourceToTests[inventory.NormalizePath(source)]
}

// TestFiles returns every test file named by the mapping, sorted.
func (t TestMapping) TestFiles() []string {
	seen := make(map[string]bool)
	for tf := range t.TestsToSource {
		seen[tf] = true
	}
	for _, tests := range t.SourceToTests {
		for _, tf := range tests {
			seen[tf] = true
		}
	}
	out := make([]string, 0, len(seen))
	for tf := range seen {
		out = append(out, tf)
	}
	sort.Strings(out)
	return out
}

func parsePathMap(v any) map[string][]string {
	m, ok := asMap(v)
	if !ok {
		return map[string][]string{}
	}
	out := make(map[string][]string, len(m))
	for k, val := range m {
		paths := stringList(val)
		normalized := make([]string, 0, len(paths))
		for _, p := range paths {
			normalized = append(normalized, inventory.NormalizePath(p))
		}
		out[inventory.NormalizePath(k)] = normalized
	}
	return out
}

func invert(m map[string][]string) map[string][]string {
	out := make(map[string][]string)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range m[k] {
			out[v] = append(out[v], k)
		}
	}
	return out
}
