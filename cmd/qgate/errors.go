package main

import (
	stderrors "errors"
	"fmt"
	"io"

	qerrors "qgate/internal/errors"
	"qgate/internal/policy"
)

const (
	exitOK      = 0
	exitCaution = 1
	exitBlock   = 2
	exitError   = 3
)

// verdictExit carries a non-OK verdict out of a command. It is not printed.
type verdictExit struct {
	status policy.Status
}

func (v *verdictExit) Error() string {
	return "verdict " + string(v.status)
}

// exitCodeForStatus maps a verdict to the process exit code.
func exitCodeForStatus(s policy.Status) int {
	switch s {
	case policy.StatusOK:
		return exitOK
	case policy.StatusCaution:
		return exitCaution
	default:
		return exitBlock
	}
}

// verdictError returns nil for OK so that Execute succeeds.
func verdictError(s policy.Status) error {
	if s == policy.StatusOK {
		return nil
	}
	return &verdictExit{status: s}
}

// handleError prints err and returns the exit code for it.
func handleError(err error, w io.Writer) int {
	var v *verdictExit
	if stderrors.As(err, &v) {
		return exitCodeForStatus(v.status)
	}

	qe, ok := qerrors.As(err)
	if !ok {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintf(w, "Error: %v\n", qe)
	if len(qe.SuggestedFixes) > 0 {
		fmt.Fprintln(w, "Suggested fixes:")
		for _, fix := range qe.SuggestedFixes {
			fmt.Fprintf(w, "  - %s\n", fix.Description)
			if fix.Command != "" {
				fmt.Fprintf(w, "    $ %s\n", fix.Command)
			}
		}
	}
	return exitError
}
