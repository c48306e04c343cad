package llm

import (
	"context"
)

// Request is a single generation call. Schema, when non-nil, is a cleaned
// JSON Schema document the provider must constrain its output to.
type Request struct {
	System          string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
	Schema          map[string]any
}

// Completion is one alternative the provider returned.
type Completion struct {
	Text string
	// CleanStop is true when the provider's finish reason indicates the
	// completion ended normally rather than being truncated or filtered.
	CleanStop bool
}

// Response holds every alternative completion plus the provider-level text
// accessor, which may differ from the completion list on some providers.
type Response struct {
	Completions []Completion
	Text        string
}

type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	// SupportsStructuredOutput reports whether the provider can bind a
	// response schema. When false the pipeline falls back to free-text
	// prompting and recovery parsing.
	SupportsStructuredOutput() bool
}
