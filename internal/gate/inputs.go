package gate

import (
	"errors"
	"fmt"

	qerrors "qgate/internal/errors"
	"qgate/internal/inventory"
	"qgate/internal/paths"
	"qgate/internal/policy"
	"qgate/internal/snapshot"
)

// Paths locates the input snapshots. Empty fields are skipped.
type Paths struct {
	Files    string
	Coverage string
	Issues   string
	Mapping  string
	Scan     string
}

// Resolve makes every non-empty path absolute against root.
func (p Paths) Resolve(root string) Paths {
	r := func(s string) string {
		if s == "" {
			return ""
		}
		return paths.Resolve(root, s)
	}
	return Paths{
		Files:    r(p.Files),
		Coverage: r(p.Coverage),
		Issues:   r(p.Issues),
		Mapping:  r(p.Mapping),
		Scan:     r(p.Scan),
	}
}

// Snapshots holds the parsed inputs of one run. A snapshot whose file is
// absent leaves its field empty and its Has* flag false.
type Snapshots struct {
	Files       []inventory.FileRecord
	HasFiles    bool
	Coverage    any
	FileCov     map[string]float64
	Issues      []snapshot.Issue
	Mapping     snapshot.TestMapping
	HasMapping  bool
	Scan        policy.ScanInput
	HasScan     bool
	SourcePaths Paths
}

// Load reads and parses every configured snapshot. Missing files are not
// errors; unreadable or undecodable ones are.
func Load(p Paths) (*Snapshots, error) {
	s := &Snapshots{SourcePaths: p}

	doc, err := load("file index", p.Files)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		s.HasFiles = true
		s.Files = snapshot.ParseFileIndex(doc)
	}

	if s.Coverage, err = load("coverage", p.Coverage); err != nil {
		return nil, err
	}
	s.FileCov = snapshot.FileCoverage(s.Coverage)

	if doc, err = load("issues", p.Issues); err != nil {
		return nil, err
	}
	s.Issues = snapshot.ParseIssues(doc)

	if doc, err = load("test mapping", p.Mapping); err != nil {
		return nil, err
	}
	s.HasMapping = doc != nil
	s.Mapping = snapshot.ParseTestMapping(doc)

	if doc, err = load("scan", p.Scan); err != nil {
		return nil, err
	}
	if doc != nil {
		s.HasScan = true
		s.Scan = snapshot.ParseScanInput(doc)
	}
	return s, nil
}

func load(kind, path string) (any, error) {
	doc, err := snapshot.LoadDocument(path)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, snapshot.ErrMalformed):
		return nil, qerrors.New(qerrors.InputMalformed, fmt.Sprintf("%s snapshot is not valid JSON or YAML", kind), err).
			WithDetails(map[string]string{"path": path}).
			WithFix(qerrors.FixAction{
				Type:        qerrors.RunCommand,
				Command:     fmt.Sprintf("jq . %q", path),
				Safe:        true,
				Description: "Validate the snapshot as JSON",
			})
	default:
		return nil, qerrors.New(qerrors.InputUnreadable, fmt.Sprintf("cannot read %s snapshot", kind), err).
			WithDetails(map[string]string{"path": path}).
			WithFix(qerrors.FixAction{
				Type:        qerrors.RunCommand,
				Command:     fmt.Sprintf("ls -l %q", path),
				Safe:        true,
				Description: "Check the input path and its permissions",
			})
	}
}
