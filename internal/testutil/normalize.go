package testutil

import (
	"encoding/json"
	"strings"
	"testing"
)

// volatileFields differ between otherwise identical runs.
var volatileFields = map[string]bool{
	"id":             true,
	"generatedAt":    true,
	"evaluatedAt":    true,
	"recordedAt":     true,
	"lastAnalyzedAt": true,
}

// Normalize round-trips data through JSON and drops volatile fields so two
// runs can be compared with reflect.DeepEqual. Occurrences of root in
// strings become "<repo>".
func Normalize(t *testing.T, root string, data any) any {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal data for normalization: %v", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("Failed to unmarshal data for normalization: %v", err)
	}
	return normalizeValue(v, root)
}

func normalizeValue(v any, root string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if volatileFields[k] {
				continue
			}
			out[k] = normalizeValue(child, root)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalizeValue(child, root)
		}
		return out
	case string:
		if root != "" {
			val = strings.ReplaceAll(val, root, "<repo>")
		}
		return strings.ReplaceAll(val, "\\", "/")
	default:
		return v
	}
}
