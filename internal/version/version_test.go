package version

import "testing"

func TestFull(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = origVersion, origCommit, origDate })

	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{"release build", "0123456789abcdef", "qgate 1.2.0\ncommit: 0123456\nbuilt: 2026-10-01"},
		{"short commit kept", "abc", "qgate 1.2.0\ncommit: abc\nbuilt: 2026-10-01"},
		{"unstamped", "unknown", "qgate 1.2.0\ncommit: unknown\nbuilt: 2026-10-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, BuildDate = "1.2.0", tt.commit, "2026-10-01"
			if got := Full(); got != tt.want {
				t.Errorf("Full() = %q, want %q", got, tt.want)
			}
		})
	}
}
