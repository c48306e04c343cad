package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/concierge/internal/config"
	"github.com/agenthands/concierge/internal/core/common"
	"github.com/agenthands/concierge/internal/llm"
	"github.com/agenthands/concierge/internal/model"
	"github.com/agenthands/concierge/internal/schema"
)

const defaultMaxCandidates = 8

// CandidateRetriever is the outbound search boundary.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) ([]model.Candidate, error)
}

// Request is one recommendation invocation.
type Request struct {
	Query         string
	Answers       map[string]string
	Questions     []model.Question
	UserID        string
	Profile       *model.UserProfile
	MaxCandidates int
}

// Pipeline turns a shopping intent plus answers into a validated result
// list: retrieve candidates, synthesize with the model, enrich from the
// candidates, and degrade to candidate-derived records when synthesis cannot
// be validated. It never panics or errors past its boundary; every failure
// collapses into PipelineResult{Success: false}.
type Pipeline struct {
	retriever CandidateRetriever
	synth     *Synthesizer
	prompts   config.SearchPrompts
	log       *zap.Logger

	// cleanedSchema is prepared once; schema preparation is deterministic.
	cleanedSchema schema.Document
}

func NewPipeline(retriever CandidateRetriever, client llm.Client, prompts config.SearchPrompts, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		retriever:     retriever,
		synth:         NewSynthesizer(client, log),
		prompts:       prompts,
		log:           log,
		cleanedSchema: schema.Prepare(ResultsSchema(), log),
	}
}

// Recommend runs the full pipeline for one request.
func (p *Pipeline) Recommend(ctx context.Context, req Request) model.PipelineResult {
	maxCandidates := req.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}

	prompt := BuildSearchPrompt(req.Query, req.Answers, req.Questions, req.UserID, req.Profile)
	searchQuery := ConstructSearchQuery(req.Query, req.Answers, req.Questions)

	candidates, err := p.retriever.Retrieve(ctx, searchQuery, maxCandidates)
	if err != nil {
		p.log.Error("candidate_retrieval_failed", zap.Error(err))
		return model.Failure(fmt.Sprintf("search retrieval failed: %v", err))
	}
	if len(candidates) == 0 {
		p.log.Info("candidate_retrieval_empty", zap.String("query", searchQuery))
		return model.Failure("No ecommerce product results found. Try adjusting the query.")
	}

	for i := range candidates {
		if candidates[i].Description == "" {
			candidates[i].Description = common.CleanSnippet(candidates[i].RawContent)
		}
	}

	candidateJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return model.Failure(fmt.Sprintf("failed to encode candidates: %v", err))
	}
	userPrompt := fmt.Sprintf(p.prompts.User, prompt, string(candidateJSON))

	results, err := p.synth.Synthesize(ctx, p.prompts.System, userPrompt, p.cleanedSchema)
	if err != nil {
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			// Infrastructure failure: not sampling noise, surface it.
			p.log.Error("synthesis_infrastructure_failure", zap.Error(err))
			return model.Failure(err.Error())
		}

		p.log.Warn("synthesis_exhausted_falling_back", zap.Error(err))
		fallback := FallbackResults(candidates, maxCandidates)
		if len(fallback) == 0 {
			return model.Failure(fmt.Sprintf("no usable candidate results after synthesis failure: %v", err))
		}
		return model.PipelineResult{Success: true, Results: fallback}
	}

	EnrichResults(results, candidates)

	p.log.Info("recommendations_synthesized",
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)))
	return model.PipelineResult{Success: true, Results: results}
}
