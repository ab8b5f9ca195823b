package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Thresholds configures the evaluator. There are no built-in defaults: every
// deployment must state its own numbers.
type Thresholds struct {
	MinHealthForOK      float64 `json:"minHealthForOk" mapstructure:"minHealthForOk" toml:"min_health_for_ok" validate:"gte=0,lte=100"`
	MinHealthForCaution float64 `json:"minHealthForCaution" mapstructure:"minHealthForCaution" toml:"min_health_for_caution" validate:"gte=0,lte=100,ltefield=MinHealthForOK"`
	MaxIssuesForOK      int     `json:"maxIssuesForOk" mapstructure:"maxIssuesForOk" toml:"max_issues_for_ok" validate:"gte=0"`
	StaleScanHours      float64 `json:"staleScanHours" mapstructure:"staleScanHours" toml:"stale_scan_hours" validate:"gt=0"`
	RequireRecentTests  bool    `json:"requireRecentTests" mapstructure:"requireRecentTests" toml:"require_recent_tests"`

	// Security holds the granular alert thresholds. When nil the legacy
	// binary check applies, controlled by TreatSecurityAlertsAsBlock.
	Security                   *SecurityThresholds `json:"security,omitempty" mapstructure:"security" toml:"security,omitempty"`
	TreatSecurityAlertsAsBlock bool                `json:"treatSecurityAlertsAsBlock" mapstructure:"treatSecurityAlertsAsBlock" toml:"treat_security_alerts_as_block"`
}

// SecurityThresholds are the granular security ceilings.
type SecurityThresholds struct {
	MaxAlertsForOK     int  `json:"maxAlertsForOk" mapstructure:"maxAlertsForOk" toml:"max_alerts_for_ok" validate:"gte=0"`
	MaxAlertsForDeploy int  `json:"maxAlertsForDeploy" mapstructure:"maxAlertsForDeploy" toml:"max_alerts_for_deploy" validate:"gte=0,gtefield=MaxAlertsForOK"`
	BlockOnCritical    bool `json:"blockOnCritical" mapstructure:"blockOnCritical" toml:"block_on_critical"`
}

var thresholdValidate = validator.New()

// ErrInvalidThresholds is wrapped by every validation failure.
var ErrInvalidThresholds = errors.New("invalid policy thresholds")

// Validate rejects negative or internally inconsistent thresholds, e.g. a
// caution floor above the OK floor. Nothing is clamped.
func (t Thresholds) Validate() error {
	err := thresholdValidate.Struct(t)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidThresholds, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidThresholds, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.StructNamespace()
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be > %s (got %v)", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got %v)", field, fe.Param(), fe.Value())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s (got %v)", field, fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must be at least %s (got %v)", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
