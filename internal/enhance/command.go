// Package enhance implements suggestion enhancers backed by external
// processes.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"qgate/internal/errors"
	"qgate/internal/slogutil"
	"qgate/internal/suggest"
)

// maxStderr bounds how much of a failing command's stderr ends up in errors.
const maxStderr = 2048

// request is written to the command's stdin.
type request struct {
	Suggestions []suggest.TestSuggestion `json:"suggestions"`
}

// response is read from stdout. A bare JSON array is accepted as well.
type response struct {
	Suggestions []suggest.TestSuggestion `json:"suggestions"`
}

// CommandEnhancer runs an external command that receives the suggestions as
// JSON on stdin and prints the enhanced suggestions as JSON on stdout.
type CommandEnhancer struct {
	name   string
	args   []string
	dir    string
	env    []string
	logger *slog.Logger
}

// Option configures a CommandEnhancer.
type Option func(*CommandEnhancer)

// WithDir sets the command's working directory.
func WithDir(dir string) Option {
	return func(c *CommandEnhancer) {
		c.dir = dir
	}
}

// WithEnv adds KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(c *CommandEnhancer) {
		c.env = append(c.env, env...)
	}
}

// WithLogger sets the enhancer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CommandEnhancer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCommandEnhancer creates an enhancer for argv. A single element holding
// spaces is split on whitespace.
func NewCommandEnhancer(argv []string, opts ...Option) (*CommandEnhancer, error) {
	if len(argv) == 1 {
		argv = strings.Fields(argv[0])
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.Newf(errors.ConfigInvalid, "enhancement command is empty")
	}
	c := &CommandEnhancer{
		name:   argv[0],
		args:   argv[1:],
		logger: slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Enhance implements suggest.Enhancer. Cancellation of ctx kills the process.
func (c *CommandEnhancer) Enhance(ctx context.Context, suggestions []suggest.TestSuggestion) ([]suggest.TestSuggestion, error) {
	payload, err := json.Marshal(request{Suggestions: suggestions})
	if err != nil {
		return nil, fmt.Errorf("encode enhancement request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("Executing enhancement command",
		"command", c.name,
		"args", c.args,
		"suggestions", len(suggestions),
	)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("enhancement command %s: %w", c.name, ctx.Err())
		}
		return nil, fmt.Errorf("enhancement command %s failed: %w (stderr: %s)", c.name, err, truncate(stderr.String(), maxStderr))
	}

	return decodeResponse(stdout.Bytes())
}

func decodeResponse(data []byte) ([]suggest.TestSuggestion, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("enhancement command produced no output")
	}
	if data[0] == '[' {
		var list []suggest.TestSuggestion
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode enhancement response: %w", err)
		}
		return list, nil
	}
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode enhancement response: %w", err)
	}
	return resp.Suggestions, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
