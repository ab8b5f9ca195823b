// Package errors defines the coded errors qgate reports to its users.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates the configuration file could not be loaded
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// PolicyNotConfigured indicates no policy thresholds were supplied
	PolicyNotConfigured ErrorCode = "POLICY_NOT_CONFIGURED"
	// PolicyInvalid indicates the supplied thresholds failed validation
	PolicyInvalid ErrorCode = "POLICY_INVALID"
	// InputUnreadable indicates an input snapshot could not be read
	InputUnreadable ErrorCode = "INPUT_UNREADABLE"
	// InputMalformed indicates an input snapshot is not JSON or YAML
	InputMalformed ErrorCode = "INPUT_MALFORMED"
	// HistoryUnavailable indicates the run history database failed
	HistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
	// RunNotFound indicates a history lookup matched nothing
	RunNotFound ErrorCode = "RUN_NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a file
	EditFile FixActionType = "edit-file"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Path        string        `json:"path,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// QgateError carries a stable code, a message and suggested fixes.
type QgateError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        any         `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a QgateError with the default fixes for its code.
func New(code ErrorCode, message string, cause error) *QgateError {
	return &QgateError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...any) *QgateError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *QgateError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *QgateError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *QgateError) WithDetails(details any) *QgateError {
	e.Details = details
	return e
}

// WithFix appends a suggested fix.
func (e *QgateError) WithFix(fix FixAction) *QgateError {
	e.SuggestedFixes = append(e.SuggestedFixes, fix)
	return e
}

// CodeOf returns the code of the first QgateError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var qe *QgateError
	if stderrors.As(err, &qe) {
		return qe.Code
	}
	return InternalError
}

// As returns the first QgateError in err's chain.
func As(err error) (*QgateError, bool) {
	var qe *QgateError
	ok := stderrors.As(err, &qe)
	return qe, ok
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigInvalid: {
		{
			Type:        EditFile,
			Path:        ".qgate/config.yaml",
			Description: "Fix the syntax or field types in the config file",
		},
	},
	PolicyNotConfigured: {
		{
			Type:        RunCommand,
			Command:     "qgate policy --policy policy.toml",
			Safe:        true,
			Description: "Pass a threshold file explicitly",
		},
		{
			Type:        EditFile,
			Path:        ".qgate/config.yaml",
			Description: "Add a policy section with every threshold",
		},
	},
	PolicyInvalid: {
		{
			Type:        EditFile,
			Path:        "policy.toml",
			Description: "Keep health thresholds within 0-100 with minHealthForCaution <= minHealthForOk",
		},
	},
	InputUnreadable: {
		{
			Type:        EditFile,
			Path:        ".qgate/config.yaml",
			Description: "Point the inputs section at readable snapshot files",
		},
	},
	InputMalformed: {
		{
			Type:        EditFile,
			Path:        ".qgate/config.yaml",
			Description: "Point the inputs section at the snapshots your scanner writes",
		},
	},
	HistoryUnavailable: {
		{
			Type:        RunCommand,
			Command:     "rm .qgate/history.db",
			Safe:        false,
			Description: "Recreate the history database",
		},
	},
	RunNotFound: {
		{
			Type:        RunCommand,
			Command:     "qgate history list",
			Safe:        true,
			Description: "List recorded runs",
		},
	},
}

// GetSuggestedFixes returns a copy of the suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	fixes, ok := ErrorActions[code]
	if !ok {
		return nil
	}
	return append([]FixAction(nil), fixes...)
}
