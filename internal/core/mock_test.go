package core

import (
	"context"

	"github.com/agenthands/concierge/internal/llm"
	"github.com/agenthands/concierge/internal/model"
)

// mockLLM returns canned responses in order, repeating the last one once the
// script runs out. It records every request it sees.
type mockLLM struct {
	responses  []*llm.Response
	errs       []error
	structured bool
	calls      int
	requests   []llm.Request
}

func (m *mockLLM) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	idx := m.calls
	m.calls++
	m.requests = append(m.requests, req)

	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	if len(m.responses) == 0 {
		return &llm.Response{}, nil
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func (m *mockLLM) SupportsStructuredOutput() bool { return m.structured }

func textResponse(text string) *llm.Response {
	return &llm.Response{Completions: []llm.Completion{{Text: text, CleanStop: true}}}
}

type stubRetriever struct {
	candidates []model.Candidate
	err        error
	lastQuery  string
	lastMax    int
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, maxResults int) ([]model.Candidate, error) {
	s.lastQuery = query
	s.lastMax = maxResults
	return s.candidates, s.err
}

func floatPtr(v float64) *float64 { return &v }
