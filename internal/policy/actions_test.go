package policy

import "testing"

func TestActionFor_AllCodesMapped(t *testing.T) {
	for _, code := range AllReasonCodes {
		a, ok := ActionFor(code)
		if !ok {
			t.Errorf("no action for %s", code)
			continue
		}
		if a.Code != code {
			t.Errorf("ActionFor(%s).Code = %s", code, a.Code)
		}
		if a.Description == "" {
			t.Errorf("ActionFor(%s) has no description", code)
		}
	}
}

func TestActionsFor(t *testing.T) {
	result := &EvaluationResult{
		Reasons: []Reason{
			{Code: ReasonTestsFailing, Severity: SeverityCritical, AffectedFiles: []string{"a.ts"}},
			{Code: ReasonLowHealthScore, Severity: SeverityWarning},
			{Code: ReasonTestsFailing, Severity: SeverityCritical, AffectedFiles: []string{"b.ts", "a.ts"}},
		},
	}

	actions := ActionsFor(result)
	if len(actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(actions))
	}
	if actions[0].Code != ReasonTestsFailing || actions[1].Code != ReasonLowHealthScore {
		t.Errorf("actions out of reason order: %s, %s", actions[0].Code, actions[1].Code)
	}
	if len(actions[0].Files) != 2 {
		t.Errorf("merged files = %v, want [a.ts b.ts]", actions[0].Files)
	}

	if ActionsFor(nil) != nil {
		t.Error("ActionsFor(nil) should be nil")
	}
}
