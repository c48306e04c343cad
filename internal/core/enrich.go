package core

import (
	"math"
	"strings"

	"github.com/agenthands/concierge/internal/core/common"
	"github.com/agenthands/concierge/internal/model"
)

const defaultFallbackRelevance = 0.8

// EnrichResults backfills missing url, image_url, and description on model
// output from the originating candidates, matched by normalized URL first
// and case-insensitive title second. Populated fields are never overwritten.
func EnrichResults(results []model.SearchResult, candidates []model.Candidate) {
	if len(results) == 0 || len(candidates) == 0 {
		return
	}

	byURL := make(map[string]*model.Candidate)
	byTitle := make(map[string]*model.Candidate)
	for i := range candidates {
		c := &candidates[i]
		if norm := common.NormalizeURL(c.URL); norm != "" {
			byURL[norm] = c
		}
		if title := lowerTitle(c.Title); title != "" {
			byTitle[title] = c
		}
	}

	for i := range results {
		r := &results[i]
		candidate := byURL[common.NormalizeURL(r.URL)]
		if candidate == nil {
			if title := lowerTitle(r.Title); title != "" {
				candidate = byTitle[title]
			}
		}
		if candidate == nil {
			continue
		}

		if r.URL == "" && candidate.URL != "" {
			r.URL = candidate.URL
		}
		if r.ImageURL == "" && candidate.ImageURL != "" {
			r.ImageURL = candidate.ImageURL
		}
		if r.Description == "" && candidate.RawContent != "" {
			if cleaned := common.CleanSnippet(candidate.RawContent); cleaned != "" {
				r.Description = cleaned
			}
		}
	}
}

// FallbackResults derives up to maxResults records directly from candidates
// after synthesis exhausts its retries. Candidates without a title or URL
// are unusable and skipped.
func FallbackResults(candidates []model.Candidate, maxResults int) []model.SearchResult {
	var results []model.SearchResult
	for _, c := range candidates {
		if len(results) >= maxResults {
			break
		}
		if c.Title == "" && c.URL == "" {
			continue
		}

		relevance := defaultFallbackRelevance
		if c.Score != nil {
			relevance = math.Min(*c.Score, 1.0)
		}
		title := c.Title
		if title == "" {
			title = c.URL
		}
		results = append(results, model.SearchResult{
			Title:       title,
			Description: common.CleanSnippet(c.RawContent),
			URL:         c.URL,
			ImageURL:    c.ImageURL,
			Relevance:   &relevance,
			Highlights:  common.ExtractHighlights(c.RawContent, 4),
		})
	}
	return results
}

func lowerTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
