package snapshot

import (
	"qgate/internal/inventory"
)

// Extractor pulls a project-wide coverage percentage out of one particular
// snapshot shape. Extractors are tried in order and the first hit wins.
type Extractor struct {
	Name    string
	Extract func(doc map[string]any) (float64, bool)
}

// BaselineExtractors is the probe order for coverage snapshots.
var BaselineExtractors = []Extractor{
	scalarExtractor("totalCoverage"),
	scalarExtractor("overall"),
	scalarExtractor("percent"),
	scalarExtractor("overallPercent"),
	scalarExtractor("lineCoverage"),
	scalarExtractor("total"),
	nestedExtractor("summary", "percent"),
	nestedExtractor("project", "percent"),
	nestedExtractor("total", "lines", "pct"),
	{Name: "files.average", Extract: averageFileCoverage},
}

func scalarExtractor(key string) Extractor {
	return Extractor{
		Name: key,
		Extract: func(doc map[string]any) (float64, bool) {
			v, ok := doc[key]
			if !ok {
				return 0, false
			}
			return asFloat(v)
		},
	}
}

func nestedExtractor(keys ...string) Extractor {
	name := keys[0]
	for _, k := range keys[1:] {
		name += "." + k
	}
	return Extractor{
		Name: name,
		Extract: func(doc map[string]any) (float64, bool) {
			var cur any = doc
			for _, k := range keys {
				m, ok := asMap(cur)
				if !ok {
					return 0, false
				}
				if cur, ok = m[k]; !ok {
					return 0, false
				}
			}
			return asFloat(cur)
		},
	}
}

func averageFileCoverage(doc map[string]any) (float64, bool) {
	entries := fileCoverageEntries(doc)
	if len(entries) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, e := range entries {
		sum += e.percent
	}
	return sum / float64(len(entries)), true
}

// ProbeBaseline returns the project coverage percentage and the name of the
// extractor that produced it. Unrecognized shapes yield (0, "", false).
func ProbeBaseline(doc any) (float64, string, bool) {
	m, ok := asMap(doc)
	if !ok {
		return 0, "", false
	}
	for _, ex := range BaselineExtractors {
		if v, ok := ex.Extract(m); ok {
			return v, ex.Name, true
		}
	}
	return 0, "", false
}

type fileCoverage struct {
	path    string
	percent float64
}

func fileCoverageEntries(doc map[string]any) []fileCoverage {
	v, ok := field(doc, "files", "fileCoverages")
	if !ok {
		return nil
	}
	list, ok := asList(v)
	if !ok {
		return nil
	}

	entries := make([]fileCoverage, 0, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		pv, ok := field(m, "percent", "coverage")
		if !ok {
			continue
		}
		pct, ok := asFloat(pv)
		if !ok {
			continue
		}
		var p string
		if v, ok := field(m, "path", "filePath", "file"); ok {
			p, _ = asString(v)
		}
		entries = append(entries, fileCoverage{path: inventory.NormalizePath(p), percent: pct})
	}
	return entries
}

// FileCoverage returns the per-file coverage map (path -> percent covered)
// carried by a coverage snapshot. Entries without a path are skipped.
func FileCoverage(doc any) map[string]float64 {
	m, ok := asMap(doc)
	if !ok {
		return nil
	}
	entries := fileCoverageEntries(m)
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		if e.path == "" {
			continue
		}
		out[e.path] = e.percent
	}
	return out
}
