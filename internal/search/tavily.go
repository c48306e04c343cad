// Package search retrieves and filters ecommerce product candidates from the
// Tavily search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// Query is one keyword-search call.
type Query struct {
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	IncludeAnswer  bool     `json:"include_answer"`
	IncludeRaw     bool     `json:"include_raw_content"`
	IncludeImages  bool     `json:"include_images"`
}

// Result is a single raw hit.
type Result struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Content  string   `json:"content"`
	Score    *float64 `json:"score,omitempty"`
	Images   []string `json:"images,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// Response is the search payload: hits plus an optional global image pool.
type Response struct {
	Results []Result `json:"results"`
	Images  []string `json:"images"`
}

// Engine abstracts the search API so the retriever can be tested with a stub.
type Engine interface {
	Search(ctx context.Context, q Query) (*Response, error)
}

type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewTavilyClient(apiKey string, baseURL string) *TavilyClient {
	if baseURL == "" {
		baseURL = defaultTavilyBaseURL
	}
	return &TavilyClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tavilyRequest struct {
	APIKey string `json:"api_key"`
	Query
}

func (c *TavilyClient) Search(ctx context.Context, q Query) (*Response, error) {
	body, err := json.Marshal(tavilyRequest{APIKey: c.apiKey, Query: q})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, string(payload))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %w", err)
	}
	return &out, nil
}
