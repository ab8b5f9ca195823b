package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qerrors "qgate/internal/errors"
	"qgate/internal/testutil"
	"qgate/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// The commands share package-level flag state, so the whole flow runs in
// one test, in order.
func TestCommands(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.WriteAll(t, map[string]string{
		testutil.FilesSnapshot:  `["src/api/orders.ts", "src/lib/math.ts", "src/lib/math.test.ts"]`,
		testutil.IssuesSnapshot: `{"issues": [{"file": "src/api/orders.ts", "severity": "critical"}]}`,
		testutil.ScanSnapshot:   `{"healthScore": 40, "lastScanAt": "2099-01-01T00:00:00Z"}`,
	})
	root := repo.Root

	t.Run("version", func(t *testing.T) {
		out, err := execute(t, "version")
		if err != nil {
			t.Fatalf("version error = %v", err)
		}
		if want := version.Full() + "\n"; out != want {
			t.Errorf("version output = %q, want %q", out, want)
		}
	})

	t.Run("init", func(t *testing.T) {
		out, err := execute(t, "init", "--repo", root, "-q")
		if err != nil {
			t.Fatalf("init error = %v", err)
		}
		if !strings.Contains(out, "initialized successfully") {
			t.Errorf("init output = %q", out)
		}
		out, err = execute(t, "init", "--repo", root, "-q")
		if err != nil || !strings.Contains(out, "already initialized") {
			t.Errorf("second init = %q, %v", out, err)
		}
	})

	t.Run("risk", func(t *testing.T) {
		out, err := execute(t, "risk", "--repo", root, "-q", "--format", "json")
		if err != nil {
			t.Fatalf("risk error = %v", err)
		}
		var res struct {
			Entries []struct {
				Path string `json:"path"`
			} `json:"entries"`
			Mode string `json:"mode"`
		}
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			t.Fatalf("risk output is not JSON: %v\n%s", err, out)
		}
		if len(res.Entries) != 2 || res.Entries[0].Path != "src/api/orders.ts" {
			t.Errorf("entries = %+v, want orders.ts first of 2", res.Entries)
		}
		if res.Mode != "normal" {
			t.Errorf("mode = %q, want normal", res.Mode)
		}
	})

	t.Run("policy without thresholds", func(t *testing.T) {
		_, err := execute(t, "policy", "--repo", root, "-q")
		if got := qerrors.CodeOf(err); got != qerrors.PolicyNotConfigured {
			t.Errorf("CodeOf(err) = %q, want %q", got, qerrors.PolicyNotConfigured)
		}
	})

	repo.Write(t, testutil.PolicyFile, testutil.LenientPolicy)

	t.Run("policy", func(t *testing.T) {
		out, err := execute(t, "policy", "--repo", root, "-q", "--format", "human")
		if got := handleError(err, &bytes.Buffer{}); got != exitBlock {
			t.Errorf("exit code = %d, want %d (err=%v)", got, exitBlock, err)
		}
		if !strings.Contains(out, "BLOCK") {
			t.Errorf("policy output missing BLOCK:\n%s", out)
		}
	})

	t.Run("run --record", func(t *testing.T) {
		textfile := filepath.Join(root, "metrics", "qgate.prom")
		_, err := execute(t, "run", "--repo", root, "-q", "--format", "json", "--record", "--metrics-textfile", textfile)
		if got := handleError(err, &bytes.Buffer{}); got != exitBlock {
			t.Errorf("exit code = %d, want %d (err=%v)", got, exitBlock, err)
		}
		data, err := os.ReadFile(textfile)
		if err != nil {
			t.Fatalf("metrics textfile not written: %v", err)
		}
		if !strings.Contains(string(data), `qgate_policy_evaluations_total{status="BLOCK"} 1`) {
			t.Errorf("textfile missing BLOCK evaluation:\n%s", data)
		}
	})

	t.Run("history", func(t *testing.T) {
		out, err := execute(t, "history", "list", "--repo", root, "-q", "--format", "json")
		if err != nil {
			t.Fatalf("history list error = %v", err)
		}
		var list HistoryListCLI
		if err := json.Unmarshal([]byte(out), &list); err != nil {
			t.Fatalf("history output is not JSON: %v", err)
		}
		if len(list.Runs) != 1 || list.Runs[0].Status != "BLOCK" {
			t.Fatalf("runs = %+v, want one BLOCK run", list.Runs)
		}

		out, err = execute(t, "history", "show", list.Runs[0].ID, "--repo", root, "-q", "--format", "human")
		if err != nil {
			t.Fatalf("history show error = %v", err)
		}
		if !strings.Contains(out, list.Runs[0].ID) || !strings.Contains(out, `"policy"`) {
			t.Errorf("history show output:\n%s", out)
		}

		_, err = execute(t, "history", "show", "missing", "--repo", root, "-q")
		if got := qerrors.CodeOf(err); got != qerrors.RunNotFound {
			t.Errorf("CodeOf(err) = %q, want %q", got, qerrors.RunNotFound)
		}
	})

	t.Run("malformed input", func(t *testing.T) {
		repo.Write(t, "broken.json", "{oops: [")
		_, err := execute(t, "coverage", "--repo", root, "-q", "--files", "broken.json")
		if got := qerrors.CodeOf(err); got != qerrors.InputMalformed {
			t.Errorf("CodeOf(err) = %q, want %q", got, qerrors.InputMalformed)
		}
	})
}
