package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/concierge/internal/llm"
)

func TestSynthesizeStructuredFirstAttempt(t *testing.T) {
	client := &mockLLM{
		structured: true,
		responses:  []*llm.Response{textResponse(`{"results":[{"title":"EcoKettle","url":"https://shop.com/kettle"}]}`)},
	}
	synth := NewSynthesizer(client, nil)

	results, err := synth.Synthesize(context.Background(), "sys", "user", cleanedResultsSchema(t))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "EcoKettle", results[0].Title)
	assert.Equal(t, 1, client.calls)

	require.Len(t, client.requests, 1)
	assert.Equal(t, "sys", client.requests[0].System)
	assert.NotNil(t, client.requests[0].Schema)
}

func TestSynthesizeFreeTextNoSchemaInRequest(t *testing.T) {
	client := &mockLLM{
		structured: false,
		responses:  []*llm.Response{textResponse("**EcoKettle**\nhttps://shop.com/kettle")},
	}
	synth := NewSynthesizer(client, nil)

	results, err := synth.Synthesize(context.Background(), "sys", "user", cleanedResultsSchema(t))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, client.requests[0].Schema)
}

func TestSynthesizeRetriesValidationFailures(t *testing.T) {
	client := &mockLLM{
		structured: true,
		responses: []*llm.Response{
			textResponse("garbage"),
			textResponse(`{"results":[]}`),
			textResponse(`{"results":[{"title":"EcoKettle"}]}`),
		},
	}
	synth := NewSynthesizer(client, nil)

	results, err := synth.Synthesize(context.Background(), "sys", "user", cleanedResultsSchema(t))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, client.calls)
}

func TestSynthesizeExhaustionStillValidationError(t *testing.T) {
	client := &mockLLM{
		structured: true,
		responses:  []*llm.Response{textResponse("garbage")},
	}
	synth := NewSynthesizer(client, nil)

	_, err := synth.Synthesize(context.Background(), "sys", "user", cleanedResultsSchema(t))
	require.Error(t, err)
	assert.Equal(t, 3, client.calls)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestSynthesizeInfrastructureErrorNoRetry(t *testing.T) {
	provider := errors.New("rate limited")
	client := &mockLLM{structured: true, errs: []error{provider}}
	synth := NewSynthesizer(client, nil)

	_, err := synth.Synthesize(context.Background(), "sys", "user", cleanedResultsSchema(t))
	require.ErrorIs(t, err, provider)
	assert.Equal(t, 1, client.calls)

	var vErr *ValidationError
	assert.False(t, errors.As(err, &vErr))
}

func TestSynthesizeEmptyOutputIsRetryable(t *testing.T) {
	client := &mockLLM{
		structured: true,
		responses: []*llm.Response{
			{},
			textResponse(`{"results":[{"title":"EcoKettle"}]}`),
		},
	}
	synth := NewSynthesizer(client, nil)

	results, err := synth.Synthesize(context.Background(), "sys", "user", cleanedResultsSchema(t))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, client.calls)
}

func TestSynthesizeFreeTextEmptyParseIsRetryable(t *testing.T) {
	client := &mockLLM{
		structured: false,
		responses:  []*llm.Response{textResponse("")},
	}
	synth := NewSynthesizer(client, nil)

	_, err := synth.Synthesize(context.Background(), "sys", "user", cleanedResultsSchema(t))
	require.Error(t, err)
	assert.Equal(t, 3, client.calls)
}
