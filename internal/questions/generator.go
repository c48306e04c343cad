// Package questions generates multiple-choice preference questions for a
// shopping query. Unlike the search pipeline it has no fallback: validation
// failures are permanent, API failures retry with exponential backoff.
package questions

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/agenthands/concierge/internal/config"
	"github.com/agenthands/concierge/internal/core/common"
	"github.com/agenthands/concierge/internal/llm"
	"github.com/agenthands/concierge/internal/model"
	"github.com/agenthands/concierge/internal/schema"
)

const (
	maxAttempts           = 4
	generationTemperature = 0.7
	generationMaxTokens   = 1000
)

type Generator struct {
	client  llm.Client
	prompts config.QuestionPrompts
	log     *zap.Logger

	cleanedSchema schema.Document
	// initialBackoff is the first retry delay; attempts wait 1s, 2s, 4s by
	// default. Shortened in tests.
	initialBackoff time.Duration
}

func NewGenerator(client llm.Client, prompts config.QuestionPrompts, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		client:         client,
		prompts:        prompts,
		log:            log,
		cleanedSchema:  schema.Prepare(questionsSchema(), log),
		initialBackoff: time.Second,
	}
}

// Generate produces numQuestions validated questions with numAnswers options
// each. Validation errors fail immediately; transport errors retry up to
// maxAttempts total with exponential delay.
func (g *Generator) Generate(ctx context.Context, userQuery string, numQuestions, numAnswers int) ([]model.Question, error) {
	if numQuestions <= 0 {
		numQuestions = 3
	}
	if numAnswers <= 0 {
		numAnswers = 3
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.initialBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	var questions []model.Question
	attempt := 0
	operation := func() error {
		attempt++
		qs, err := g.generateOnce(ctx, userQuery, numQuestions, numAnswers)
		if err != nil {
			g.log.Warn("question_generation_attempt_failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err))
			return err
		}
		questions = qs
		return nil
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, maxAttempts-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("question generation failed after %d attempts: %w", attempt, err)
	}

	g.log.Info("questions_generated",
		zap.Int("num_questions", len(questions)),
		zap.Int("num_answers", numAnswers))
	return questions, nil
}

func (g *Generator) generateOnce(ctx context.Context, userQuery string, numQuestions, numAnswers int) ([]model.Question, error) {
	req := llm.Request{
		System:          g.prompts.System,
		Prompt:          fmt.Sprintf(g.prompts.User, userQuery, numQuestions, numAnswers),
		Temperature:     generationTemperature,
		MaxOutputTokens: generationMaxTokens,
	}
	if g.client.SupportsStructuredOutput() {
		req.Schema = g.cleanedSchema
	}

	resp, err := g.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	text := llm.ExtractText(resp)
	if text == "" {
		return nil, backoff.Permanent(fmt.Errorf("empty response from model"))
	}

	parsed, err := common.ExtractJSON[model.QuestionsResponse](text)
	if err != nil {
		// Structured output should always be parseable; a decode failure is
		// a validation problem, not transport flakiness.
		return nil, backoff.Permanent(fmt.Errorf("model output is not valid JSON: %w", err))
	}
	if err := parsed.Validate(); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("validation error: %w", err))
	}
	return parsed.Questions, nil
}

func questionsSchema() schema.Document {
	return schema.Document{
		"type":  "object",
		"title": "QuestionsResponse",
		"properties": schema.Document{
			"questions": schema.Document{
				"type":     "array",
				"minItems": 1,
				"maxItems": 10,
				"items":    schema.Document{"$ref": "#/$defs/Question"},
			},
		},
		"required": []any{"questions"},
		"$defs": schema.Document{
			"Question": schema.Document{
				"type":  "object",
				"title": "Question",
				"properties": schema.Document{
					"id":   schema.Document{"type": "string"},
					"text": schema.Document{"type": "string", "minLength": 5},
					"answers": schema.Document{
						"type":     "array",
						"minItems": 2,
						"maxItems": 6,
						"items":    schema.Document{"type": "string"},
					},
				},
				"required": []any{"id", "text", "answers"},
			},
		},
	}
}
