package suggest

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// Enhancer enriches suggestions, typically by calling an external model.
// It receives the top suggestions and returns any subset of them, matched
// back by ID. It may reorder and annotate but cannot drop suggestions.
//
// Enhance must return once ctx is done. The generator stops waiting at the
// enhancement deadline regardless, but a call that keeps running after that
// leaks its goroutine until it returns.
type Enhancer interface {
	Enhance(ctx context.Context, suggestions []TestSuggestion) ([]TestSuggestion, error)
}

// EnhancerFunc adapts a function to the Enhancer interface.
type EnhancerFunc func(ctx context.Context, suggestions []TestSuggestion) ([]TestSuggestion, error)

// Enhance calls f.
func (f EnhancerFunc) Enhance(ctx context.Context, suggestions []TestSuggestion) ([]TestSuggestion, error) {
	return f(ctx, suggestions)
}

// ErrMalformedEnhancement is returned when an enhancer's response cannot be
// merged.
var ErrMalformedEnhancement = errors.New("malformed enhancement response")

// enhance runs the enhancer under timeout and retry and merges the result.
// Any failure returns the static list unchanged together with the cause.
func (g *Generator) enhance(ctx context.Context, static []TestSuggestion) ([]TestSuggestion, error) {
	cfg := g.cfg.Enhancement

	batch := make([]TestSuggestion, 0, min(len(static), cfg.MaxBatch))
	for _, s := range static[:min(len(static), cfg.MaxBatch)] {
		batch = append(batch, s.clone())
	}

	r := retry.New[[]TestSuggestion](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[[]TestSuggestion](timeout.Config{
		DefaultTimeout: cfg.Timeout,
	})

	enhanced, err := r.Do(ctx, func(ctx context.Context) ([]TestSuggestion, error) {
		return t.Execute(ctx, cfg.Timeout, func(ctx context.Context) ([]TestSuggestion, error) {
			return safeEnhance(ctx, g.enhancer, cloneAll(batch))
		})
	})
	if err != nil {
		return static, err
	}
	if err := validateEnhanced(batch, enhanced); err != nil {
		return static, err
	}
	return Merge(static, enhanced, cfg.Source), nil
}

type enhanceResult struct {
	out []TestSuggestion
	err error
}

// safeEnhance runs the enhancer on its own goroutine, gives up when ctx is
// done even if the enhancer ignores it, and converts a panic into an error.
func safeEnhance(ctx context.Context, e Enhancer, batch []TestSuggestion) ([]TestSuggestion, error) {
	done := make(chan enhanceResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- enhanceResult{err: fmt.Errorf("enhancer panicked: %v", r)}
			}
		}()
		out, err := e.Enhance(ctx, batch)
		done <- enhanceResult{out: out, err: err}
	}()

	select {
	case r := <-done:
		return r.out, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// validateEnhanced checks that every returned suggestion refers to a
// distinct suggestion of the batch and carries only known enum values.
func validateEnhanced(batch, enhanced []TestSuggestion) error {
	known := make(map[string]bool, len(batch))
	for _, s := range batch {
		known[s.ID] = true
	}

	seen := make(map[string]bool, len(enhanced))
	for i, s := range enhanced {
		switch {
		case s.ID == "":
			return fmt.Errorf("%w: entry %d has no id", ErrMalformedEnhancement, i)
		case !known[s.ID]:
			return fmt.Errorf("%w: unknown id %q", ErrMalformedEnhancement, s.ID)
		case seen[s.ID]:
			return fmt.Errorf("%w: duplicate id %q", ErrMalformedEnhancement, s.ID)
		case s.Priority != "" && !s.Priority.Valid():
			return fmt.Errorf("%w: invalid priority %q for %s", ErrMalformedEnhancement, s.Priority, s.ID)
		case s.Kind != "" && !s.Kind.Valid():
			return fmt.Errorf("%w: invalid kind %q for %s", ErrMalformedEnhancement, s.Kind, s.ID)
		case s.Source != "" && !s.Source.Valid():
			return fmt.Errorf("%w: invalid source %q for %s", ErrMalformedEnhancement, s.Source, s.ID)
		case s.EstimatedCoverageGain != nil && (*s.EstimatedCoverageGain < 0 || *s.EstimatedCoverageGain > 100):
			return fmt.Errorf("%w: coverage gain out of range for %s", ErrMalformedEnhancement, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Merge overlays enhanced suggestions onto the static list by ID. Static
// suggestions the enhancer did not return are kept as they are. For returned
// ones every non-empty enhanced field wins and Source is upgraded to source
// unless the enhancer named an AI source itself. The result is sorted.
func Merge(static, enhanced []TestSuggestion, source Source) []TestSuggestion {
	byID := make(map[string]TestSuggestion, len(enhanced))
	for _, e := range enhanced {
		byID[e.ID] = e
	}

	out := make([]TestSuggestion, 0, len(static))
	for _, s := range static {
		e, ok := byID[s.ID]
		if !ok {
			out = append(out, s)
			continue
		}
		out = append(out, overlay(s, e, source))
	}
	sortSuggestions(out)
	return out
}

func overlay(s, e TestSuggestion, source Source) TestSuggestion {
	merged := s.clone()
	if e.FilePath != "" {
		merged.FilePath = e.FilePath
	}
	if e.SymbolName != "" {
		merged.SymbolName = e.SymbolName
	}
	if e.Kind != "" {
		merged.Kind = e.Kind
	}
	if e.Description != "" {
		merged.Description = e.Description
	}
	if e.Priority != "" {
		merged.Priority = e.Priority
	}
	if e.EstimatedCoverageGain != nil {
		g := *e.EstimatedCoverageGain
		merged.EstimatedCoverageGain = &g
	}
	if e.Snippet != "" {
		merged.Snippet = e.Snippet
	}
	merged.Source = source
	if e.Source == SourceAIHybrid || e.Source == SourceAIFull {
		merged.Source = e.Source
	}
	return merged
}

func cloneAll(in []TestSuggestion) []TestSuggestion {
	out := make([]TestSuggestion, len(in))
	for i, s := range in {
		out[i] = s.clone()
	}
	return out
}
