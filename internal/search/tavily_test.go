package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyClientSearch(t *testing.T) {
	var received map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		resp := Response{
			Results: []Result{{Title: "Shoe", URL: "https://example.com/product/shoe", Content: "A shoe."}},
			Images:  []string{"https://example.com/img/product.jpg"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	client := NewTavilyClient("test-key", ts.URL)
	resp, err := client.Search(context.Background(), Query{
		Query:         "shoes buy product",
		MaxResults:    9,
		SearchDepth:   "advanced",
		IncludeImages: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key", received["api_key"])
	assert.Equal(t, "shoes buy product", received["query"])
	assert.Equal(t, float64(9), received["max_results"])

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Shoe", resp.Results[0].Title)
	assert.Len(t, resp.Images, 1)
}

func TestTavilyClientErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewTavilyClient("bad-key", ts.URL)
	_, err := client.Search(context.Background(), Query{Query: "shoes", MaxResults: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTavilyClientContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewTavilyClient("key", ts.URL)
	_, err := client.Search(ctx, Query{Query: "shoes", MaxResults: 1})
	assert.Error(t, err)
}
