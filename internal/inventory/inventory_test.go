package inventory

import (
	"strings"
	"testing"
)

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/lib/format.test.ts", true},
		{"src/components/Button.spec.tsx", true},
		{"internal/risk/scorer_test.go", true},
		{"app/tests/helpers.py", true},
		{"src/__tests__/api.ts", true},
		{"pkg/test_utils.py", true},
		{"src/lib/format.ts", false},
		{"src/latest/index.ts", false},
		{"src/contest.ts", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsTestFile(tt.path); got != tt.want {
				t.Errorf("IsTestFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFilter_Analyzable(t *testing.T) {
	f := NewFilter(FilterConfig{})

	tests := []struct {
		path string
		want bool
	}{
		{"src/api/users.ts", true},
		{"src/App.tsx", true},
		{"main.go", true},
		{"node_modules/react/index.js", false},
		{"dist/bundle.js", false},
		{".git/hooks/pre-commit.py", false},
		{"src/types/global.d.ts", false},
		{"README.md", false},
		{"src/api/users.test.ts", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := f.Analyzable(FileRecord{Path: tt.path}); got != tt.want {
				t.Errorf("Analyzable(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFilter_ExplicitExtension(t *testing.T) {
	f := NewFilter(FilterConfig{})

	// Index entries may carry the extension separately from the path.
	if !f.IsSource(FileRecord{Path: "scripts/deploy", Ext: "py"}) {
		t.Error("record with ext=py should count as source")
	}
	if f.IsSource(FileRecord{Path: "docs/guide", Ext: ".md"}) {
		t.Error("record with ext=.md should not count as source")
	}
}

func TestFilter_Partition(t *testing.T) {
	f := NewFilter(FilterConfig{})
	files := []FileRecord{
		{Path: "src/b.ts"},
		{Path: "node_modules/x/index.js"},
		{Path: "src/a.ts"},
		{Path: "src/a.test.ts"},
	}

	analyzable, excluded := f.Partition(files)
	if len(analyzable) != 2 {
		t.Fatalf("analyzable = %d, want 2", len(analyzable))
	}
	if analyzable[0].Path != "src/b.ts" || analyzable[1].Path != "src/a.ts" {
		t.Errorf("Partition did not preserve order: %v", analyzable)
	}
	if excluded != 2 {
		t.Errorf("excluded = %d, want 2", excluded)
	}
}

func TestTestSubjectName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/components/Button.test.tsx", "Button"},
		{"tests/format.spec.ts", "format"},
		{"internal/risk/scorer_test.go", "scorer"},
		{"tests/test_models.py", "models"},
	}

	for _, tt := range tests {
		if got := TestSubjectName(tt.path); got != tt.want {
			t.Errorf("TestSubjectName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(`.\src\lib\a.ts`); got != "src/lib/a.ts" {
		t.Errorf("NormalizePath = %q, want %q", got, "src/lib/a.ts")
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/authService.ts", "src auth service ts"},
		{"app/api/users/route.ts", "app api users route ts"},
		{"lib/APIRoute.tsx", "lib api route tsx"},
		{"hooks/useAuth.ts", "hooks use auth ts"},
		{"billing_v2/invoice-list.js", "billing v2 invoice list js"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := strings.Join(Tokens(tt.path), " ")
			if got != tt.want {
				t.Errorf("Tokens(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
