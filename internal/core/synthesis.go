package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/concierge/internal/llm"
	"github.com/agenthands/concierge/internal/model"
	"github.com/agenthands/concierge/internal/schema"
)

const (
	defaultMaxAttempts    = 3
	synthesisTemperature  = 0.4
	synthesisMaxOutTokens = 4096
)

// Synthesizer invokes the generative model and retries validation failures
// up to maxAttempts, with no delay between attempts. Infrastructure errors
// propagate immediately without consuming further attempts.
type Synthesizer struct {
	client      llm.Client
	log         *zap.Logger
	maxAttempts int
}

func NewSynthesizer(client llm.Client, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{
		client:      client,
		log:         log,
		maxAttempts: defaultMaxAttempts,
	}
}

// Synthesize runs the bounded attempt loop. On exhaustion it returns the
// last validation failure wrapped, still detectable via errors.As, so the
// caller can choose candidate fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, systemPrompt, userPrompt string, cleaned schema.Document) ([]model.SearchResult, error) {
	structured := s.client.SupportsStructuredOutput()

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		results, err := s.attempt(ctx, systemPrompt, userPrompt, cleaned, structured)
		if err == nil {
			s.log.Debug("synthesis_succeeded",
				zap.Int("attempt", attempt),
				zap.Int("results", len(results)),
				zap.Bool("structured", structured))
			return results, nil
		}

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			return nil, err
		}
		lastErr = err
		s.log.Warn("synthesis_attempt_failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxAttempts),
			zap.Error(err))
	}
	return nil, fmt.Errorf("synthesis failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Synthesizer) attempt(ctx context.Context, systemPrompt, userPrompt string, cleaned schema.Document, structured bool) ([]model.SearchResult, error) {
	req := llm.Request{
		System:          systemPrompt,
		Prompt:          userPrompt,
		Temperature:     synthesisTemperature,
		MaxOutputTokens: synthesisMaxOutTokens,
	}
	if structured {
		req.Schema = cleaned
	}

	resp, err := s.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	text := llm.ExtractText(resp)
	if text == "" {
		return nil, &ValidationError{Err: errors.New("model returned no content")}
	}

	if structured {
		return ParseStructured(text, cleaned)
	}

	results := ParseRecommendations(text)
	if len(results) == 0 {
		return nil, &ValidationError{Err: errors.New("no records recovered from model output")}
	}
	return results, nil
}
