package policy

// ActionType is the kind of remediation suggested for a reason.
type ActionType string

const (
	ActionRunCommand ActionType = "run-command"
	ActionReview     ActionType = "review"
	ActionOpenDocs   ActionType = "open-docs"
)

// Action is a suggested remediation for one reason code.
type Action struct {
	Code        ReasonCode `json:"code"`
	Type        ActionType `json:"type"`
	Command     string     `json:"command,omitempty"`
	Description string     `json:"description"`
	Files       []string   `json:"files,omitempty"`
}

// reasonActions maps reason codes to their remediation.
var reasonActions = map[ReasonCode]Action{
	ReasonNoBaseline: {
		Type:        ActionRunCommand,
		Command:     "qgate run --record",
		Description: "Run a full scan to establish a baseline",
	},
	ReasonStaleScan: {
		Type:        ActionRunCommand,
		Command:     "qgate run --record",
		Description: "Re-run the project scan",
	},
	ReasonMissingScanTimestamp: {
		Type:        ActionRunCommand,
		Command:     "qgate run --record",
		Description: "Re-run the scan so the health score carries a timestamp",
	},
	ReasonCriticalHealthScore: {
		Type:        ActionReview,
		Command:     "qgate risk --format=human",
		Description: "Fix the highest-risk files before deploying",
	},
	ReasonLowHealthScore: {
		Type:        ActionReview,
		Command:     "qgate suggest --format=human",
		Description: "Add tests for the top suggested files",
	},
	ReasonTestsFailing: {
		Type:        ActionRunCommand,
		Description: "Fix the failing test suites and re-run them",
	},
	ReasonTestsNotRun: {
		Type:        ActionRunCommand,
		Description: "Run the test suite",
	},
	ReasonSecurityCriticalAlert: {
		Type:        ActionReview,
		Description: "Resolve critical security alerts",
	},
	ReasonSecurityOverDeployMax: {
		Type:        ActionReview,
		Description: "Reduce open security alerts below the deploy limit",
	},
	ReasonSecurityOverOKMax: {
		Type:        ActionReview,
		Description: "Triage open security alerts",
	},
	ReasonSecurityAlertsPresent: {
		Type:        ActionReview,
		Description: "Review open security alerts",
	},
	ReasonTooManyIssues: {
		Type:        ActionReview,
		Command:     "qgate risk --format=human",
		Description: "Burn down open issues in the riskiest files",
	},
}

// ActionFor returns the remediation for a reason code.
func ActionFor(code ReasonCode) (Action, bool) {
	a, ok := reasonActions[code]
	if !ok {
		return Action{}, false
	}
	a.Code = code
	return a, true
}

// ActionsFor returns one remediation per distinct reason code of the result,
// in reason order, carrying the files attributed to that reason.
func ActionsFor(result *EvaluationResult) []Action {
	if result == nil {
		return nil
	}
	seen := make(map[ReasonCode]int)
	actions := make([]Action, 0, len(result.Reasons))
	for _, r := range result.Reasons {
		if i, ok := seen[r.Code]; ok {
			actions[i].Files = dedupe(append(actions[i].Files, r.AffectedFiles...))
			continue
		}
		a, ok := ActionFor(r.Code)
		if !ok {
			continue
		}
		a.Files = append([]string(nil), r.AffectedFiles...)
		seen[r.Code] = len(actions)
		actions = append(actions, a)
	}
	return actions
}
