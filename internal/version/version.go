// Package version holds the build metadata stamped in with
// -ldflags "-X qgate/internal/version.Version=..." at release time.
package version

import "fmt"

var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ShortCommit trims the commit to the 7-character form used in reports and
// metric labels.
func ShortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

// Full is what `qgate version` prints.
func Full() string {
	return fmt.Sprintf("qgate %s\ncommit: %s\nbuilt: %s", Version, ShortCommit(), BuildDate)
}
