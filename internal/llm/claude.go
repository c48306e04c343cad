package llm

import (
	"context"

	"github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

func NewClaudeClient(apiKey string, model string, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(apiKey, opts...)

	return &ClaudeClient{
		client: client,
		model:  model,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, req Request) (*Response, error) {
	maxTokens := int(req.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	temp := req.Temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      req.System,
		Temperature: &temp,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.Prompt),
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, err
	}

	out := &Response{}
	var text string
	for _, block := range resp.Content {
		if block.Text != nil {
			text += *block.Text
		}
	}
	out.Completions = append(out.Completions, Completion{
		Text:      text,
		CleanStop: resp.StopReason == anthropic.MessagesStopReasonEndTurn,
	})
	return out, nil
}

// The Messages API has no response-schema binding, so structured output is
// unavailable and the pipeline uses free-text recovery parsing.
func (c *ClaudeClient) SupportsStructuredOutput() bool { return false }
