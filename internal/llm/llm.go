// Package llm is the client for the remote text-generation backend.
package llm

import (
	"context"
	"fmt"
)

// Options are per-call generation hints.
type Options struct {
	// Format asks the backend for structured output, e.g. "json".
	Format string
	// Extra is merged into the request body as additional options.
	Extra map[string]interface{}
}

// Result is one completed generation.
type Result struct {
	OutputText string
	LatencyMs  int64
	// Metadata always carries the raw upstream body under "raw_response".
	Metadata map[string]interface{}
}

// Generator produces text for a prompt with the named model.
type Generator interface {
	Generate(ctx context.Context, prompt, model string, opts Options) (*Result, error)
}

// UpstreamError reports a failed call to the generation backend.
// StatusCode is zero for transport failures.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("generation backend returned %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("generation backend: %v", e.Err)
	default:
		return "generation backend error"
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }
