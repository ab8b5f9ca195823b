package policy

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func baseThresholds() Thresholds {
	return Thresholds{
		MinHealthForOK:      70,
		MinHealthForCaution: 40,
		MaxIssuesForOK:      50,
		StaleScanHours:      24,
	}
}

func newTestEvaluator(t *testing.T, th Thresholds) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(th, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	return e
}

func health(v float64) *float64 { return &v }

func scannedAgo(d time.Duration) *time.Time {
	t := testNow.Add(-d)
	return &t
}

func codes(reasons []Reason) []ReasonCode {
	out := make([]ReasonCode, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, r.Code)
	}
	return out
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		in         ScanInput
		wantStatus Status
		wantCodes  []ReasonCode
	}{
		{
			name:       "healthy project",
			in:         ScanInput{HealthScore: health(95), LastScanAt: scannedAgo(time.Hour), TestStatus: TestsPassing},
			wantStatus: StatusOK,
			wantCodes:  []ReasonCode{},
		},
		{
			name:       "health only warning",
			in:         ScanInput{HealthScore: health(55), LastScanAt: scannedAgo(time.Hour)},
			wantStatus: StatusCaution,
			wantCodes:  []ReasonCode{ReasonLowHealthScore},
		},
		{
			name:       "health critical",
			in:         ScanInput{HealthScore: health(30), LastScanAt: scannedAgo(time.Hour)},
			wantStatus: StatusBlock,
			wantCodes:  []ReasonCode{ReasonCriticalHealthScore},
		},
		{
			name:       "failing tests override health",
			in:         ScanInput{HealthScore: health(95), LastScanAt: scannedAgo(time.Hour), FailingSuites: 2},
			wantStatus: StatusBlock,
			wantCodes:  []ReasonCode{ReasonTestsFailing},
		},
		{
			name:       "no baseline at all",
			in:         ScanInput{},
			wantStatus: StatusCaution,
			wantCodes:  []ReasonCode{ReasonNoBaseline},
		},
		{
			name:       "score without timestamp",
			in:         ScanInput{HealthScore: health(90)},
			wantStatus: StatusCaution,
			wantCodes:  []ReasonCode{ReasonMissingScanTimestamp},
		},
		{
			name:       "stale scan",
			in:         ScanInput{HealthScore: health(90), LastScanAt: scannedAgo(48 * time.Hour)},
			wantStatus: StatusCaution,
			wantCodes:  []ReasonCode{ReasonStaleScan},
		},
		{
			name:       "timestamp only is a baseline",
			in:         ScanInput{LastScanAt: scannedAgo(time.Hour)},
			wantStatus: StatusOK,
			wantCodes:  []ReasonCode{},
		},
		{
			name:       "not run ignored unless required",
			in:         ScanInput{HealthScore: health(90), LastScanAt: scannedAgo(time.Hour), TestStatus: TestsNotRun},
			wantStatus: StatusOK,
			wantCodes:  []ReasonCode{},
		},
		{
			name:       "too many issues",
			in:         ScanInput{HealthScore: health(90), LastScanAt: scannedAgo(time.Hour), IssueCount: 51},
			wantStatus: StatusCaution,
			wantCodes:  []ReasonCode{ReasonTooManyIssues},
		},
		{
			name: "checks are additive",
			in: ScanInput{
				HealthScore:   health(55),
				LastScanAt:    scannedAgo(72 * time.Hour),
				TestStatus:    TestsFailing,
				Security:      SecurityAlerts{HasAlerts: true},
				IssueCount:    120,
				AffectedFiles: map[Category][]string{},
			},
			wantStatus: StatusBlock,
			wantCodes: []ReasonCode{
				ReasonStaleScan, ReasonLowHealthScore, ReasonTestsFailing,
				ReasonSecurityAlertsPresent, ReasonTooManyIssues,
			},
		},
	}

	e := newTestEvaluator(t, baseThresholds())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(tt.in)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s (reasons %v)", got.Status, tt.wantStatus, codes(got.Reasons))
			}
			gotCodes := codes(got.Reasons)
			if len(gotCodes) != len(tt.wantCodes) {
				t.Fatalf("reasons = %v, want %v", gotCodes, tt.wantCodes)
			}
			for i := range gotCodes {
				if gotCodes[i] != tt.wantCodes[i] {
					t.Errorf("reason[%d] = %s, want %s", i, gotCodes[i], tt.wantCodes[i])
				}
			}
			if !got.EvaluatedAt.Equal(testNow) {
				t.Errorf("EvaluatedAt = %v, want %v", got.EvaluatedAt, testNow)
			}
		})
	}
}

func TestEvaluate_RequireRecentTests(t *testing.T) {
	th := baseThresholds()
	th.RequireRecentTests = true
	e := newTestEvaluator(t, th)

	got := e.Evaluate(ScanInput{HealthScore: health(90), LastScanAt: scannedAgo(time.Hour), TestStatus: TestsNotRun})
	if got.Status != StatusCaution {
		t.Errorf("Status = %s, want CAUTION", got.Status)
	}
	if len(got.Reasons) != 1 || got.Reasons[0].Code != ReasonTestsNotRun {
		t.Errorf("reasons = %v, want [tests_not_run]", codes(got.Reasons))
	}
}

func TestEvaluate_GranularSecurity(t *testing.T) {
	th := baseThresholds()
	th.Security = &SecurityThresholds{MaxAlertsForOK: 2, MaxAlertsForDeploy: 10, BlockOnCritical: true}
	e := newTestEvaluator(t, th)
	fresh := scannedAgo(time.Hour)

	tests := []struct {
		name     string
		alerts   SecurityAlerts
		wantCode ReasonCode
		wantSev  Severity
	}{
		{"critical alert blocks", SecurityAlerts{Critical: 1, Total: 1}, ReasonSecurityCriticalAlert, SeverityCritical},
		{"over deploy ceiling", SecurityAlerts{High: 11}, ReasonSecurityOverDeployMax, SeverityCritical},
		{"over ok ceiling", SecurityAlerts{Total: 3}, ReasonSecurityOverOKMax, SeverityWarning},
		{"within limits", SecurityAlerts{Total: 2}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(ScanInput{HealthScore: health(90), LastScanAt: fresh, Security: tt.alerts})
			if tt.wantCode == "" {
				if len(got.Reasons) != 0 {
					t.Errorf("reasons = %v, want none", codes(got.Reasons))
				}
				return
			}
			if len(got.Reasons) != 1 {
				t.Fatalf("reasons = %v, want exactly one", codes(got.Reasons))
			}
			if got.Reasons[0].Code != tt.wantCode || got.Reasons[0].Severity != tt.wantSev {
				t.Errorf("reason = %s/%s, want %s/%s", got.Reasons[0].Code, got.Reasons[0].Severity, tt.wantCode, tt.wantSev)
			}
		})
	}
}

func TestEvaluate_CriticalAlertWithoutBlockFlag(t *testing.T) {
	th := baseThresholds()
	th.Security = &SecurityThresholds{MaxAlertsForOK: 0, MaxAlertsForDeploy: 5}
	e := newTestEvaluator(t, th)

	got := e.Evaluate(ScanInput{HealthScore: health(90), LastScanAt: scannedAgo(time.Hour), Security: SecurityAlerts{Critical: 1}})
	if len(got.Reasons) != 1 || got.Reasons[0].Code != ReasonSecurityOverOKMax {
		t.Errorf("reasons = %v, want [security_alerts_over_ok_limit]", codes(got.Reasons))
	}
}

func TestEvaluate_LegacySecurity(t *testing.T) {
	fresh := scannedAgo(time.Hour)
	in := ScanInput{HealthScore: health(90), LastScanAt: fresh, Security: SecurityAlerts{HasAlerts: true}}

	e := newTestEvaluator(t, baseThresholds())
	if got := e.Evaluate(in); got.Status != StatusCaution {
		t.Errorf("Status = %s, want CAUTION without block flag", got.Status)
	}

	th := baseThresholds()
	th.TreatSecurityAlertsAsBlock = true
	e = newTestEvaluator(t, th)
	if got := e.Evaluate(in); got.Status != StatusBlock {
		t.Errorf("Status = %s, want BLOCK with block flag", got.Status)
	}

	if got := e.Evaluate(ScanInput{HealthScore: health(90), LastScanAt: fresh}); got.Status != StatusOK {
		t.Errorf("Status = %s, want OK with no alerts", got.Status)
	}
}

func TestEvaluate_AffectedFiles(t *testing.T) {
	e := newTestEvaluator(t, baseThresholds())
	got := e.Evaluate(ScanInput{
		HealthScore:   health(30),
		LastScanAt:    scannedAgo(time.Hour),
		FailingSuites: 1,
		AffectedFiles: map[Category][]string{
			CategoryHealth: {"src/a.ts", "src/b.ts", "src/a.ts"},
			CategoryTests:  {"src/b.ts", "src/c.ts"},
		},
	})

	want := []string{"src/a.ts", "src/b.ts", "src/c.ts"}
	if len(got.AffectedFiles) != len(want) {
		t.Fatalf("AffectedFiles = %v, want %v", got.AffectedFiles, want)
	}
	for i := range want {
		if got.AffectedFiles[i] != want[i] {
			t.Errorf("AffectedFiles[%d] = %q, want %q", i, got.AffectedFiles[i], want[i])
		}
	}
	if len(got.Reasons[0].AffectedFiles) != 2 {
		t.Errorf("health reason files = %v, want deduplicated pair", got.Reasons[0].AffectedFiles)
	}
}

func TestEvaluate_EmptyAffectedFilesIsNotNil(t *testing.T) {
	e := newTestEvaluator(t, baseThresholds())
	got := e.Evaluate(ScanInput{HealthScore: health(90), LastScanAt: scannedAgo(time.Hour)})
	if got.AffectedFiles == nil || got.Reasons == nil {
		t.Error("AffectedFiles and Reasons should be empty slices, not nil")
	}
	if got.Summary != "All quality checks passed" {
		t.Errorf("Summary = %q", got.Summary)
	}
}

func TestStatusFor_Monotonic(t *testing.T) {
	rank := map[Status]int{StatusOK: 0, StatusCaution: 1, StatusBlock: 2}
	pool := []Reason{
		{Code: ReasonLowHealthScore, Severity: SeverityWarning},
		{Code: ReasonStaleScan, Severity: SeverityWarning},
		{Code: ReasonTestsFailing, Severity: SeverityCritical},
		{Code: ReasonNoBaseline, Severity: SeverityInfo},
	}
	critical := Reason{Code: ReasonSecurityCriticalAlert, Severity: SeverityCritical}

	// Every subset of the pool.
	for mask := 0; mask < 1<<len(pool); mask++ {
		var reasons []Reason
		for i := range pool {
			if mask&(1<<i) != 0 {
				reasons = append(reasons, pool[i])
			}
		}
		before := StatusFor(reasons)
		after := StatusFor(append(reasons, critical))
		if after != StatusBlock {
			t.Errorf("mask %b: adding a critical reason gave %s, want BLOCK", mask, after)
		}
		if rank[after] < rank[before] {
			t.Errorf("mask %b: status moved from %s to %s", mask, before, after)
		}
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Thresholds)
		wantErr bool
	}{
		{"valid", func(*Thresholds) {}, false},
		{"caution above ok", func(th *Thresholds) { th.MinHealthForCaution = 80 }, true},
		{"negative health", func(th *Thresholds) { th.MinHealthForCaution = -1 }, true},
		{"health above 100", func(th *Thresholds) { th.MinHealthForOK = 101 }, true},
		{"negative issues", func(th *Thresholds) { th.MaxIssuesForOK = -5 }, true},
		{"zero stale hours", func(th *Thresholds) { th.StaleScanHours = 0 }, true},
		{"deploy below ok", func(th *Thresholds) {
			th.Security = &SecurityThresholds{MaxAlertsForOK: 5, MaxAlertsForDeploy: 2}
		}, true},
		{"granular security", func(th *Thresholds) {
			th.Security = &SecurityThresholds{MaxAlertsForOK: 0, MaxAlertsForDeploy: 3}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := baseThresholds()
			tt.mutate(&th)
			err := th.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidThresholds) {
				t.Errorf("error %v does not wrap ErrInvalidThresholds", err)
			}
			if _, nerr := NewEvaluator(th); (nerr != nil) != tt.wantErr {
				t.Errorf("NewEvaluator() error = %v, wantErr %v", nerr, tt.wantErr)
			}
		})
	}
}

func TestNewEvaluator_NilOptionsIgnored(t *testing.T) {
	e, err := NewEvaluator(baseThresholds(), WithClock(nil), WithLogger(nil))
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	res := e.Evaluate(ScanInput{HealthScore: health(95), LastScanAt: scannedAgo(time.Hour)})
	if res == nil || res.EvaluatedAt.IsZero() {
		t.Fatalf("Evaluate() = %+v, want a timestamped result", res)
	}
}
