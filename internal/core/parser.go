package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/agenthands/concierge/internal/model"
	"github.com/agenthands/concierge/internal/schema"
)

var (
	urlRe           = regexp.MustCompile(`https?://[^\s\)]+`)
	markdownHrefRe  = regexp.MustCompile(`\]\((https?://[^\)]+)\)`)
	boldRe          = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	numberedItemRe  = regexp.MustCompile(`\n\s*\d+\.\s+`)
	titlePrefixRe   = regexp.MustCompile(`(?i)^(Product|Name|Title):?\s*`)
	imageURLMarkers = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", "image", "img"}
)

const placeholderTitle = "Product Recommendation"

// ParseStructured decodes constrained model output and validates it against
// the cleaned schema. Unknown fields are dropped by decoding; absent fields
// stay absent. Any decode or validation problem is a retryable
// ValidationError.
func ParseStructured(text string, cleaned schema.Document) ([]model.SearchResult, error) {
	validation, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(cleaned),
		gojsonschema.NewStringLoader(text),
	)
	if err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("output is not valid JSON: %w", err)}
	}
	if !validation.Valid() {
		descs := make([]string, len(validation.Errors()))
		for i, desc := range validation.Errors() {
			descs[i] = desc.String()
		}
		return nil, &ValidationError{Err: fmt.Errorf("output violates schema: %s", strings.Join(descs, "; "))}
	}

	var parsed model.LLMSearchResults
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &ValidationError{Err: err}
	}
	if len(parsed.Results) == 0 {
		return nil, &ValidationError{Err: errors.New("output contains no results")}
	}
	for i := range parsed.Results {
		if strings.TrimSpace(parsed.Results[i].Title) == "" {
			return nil, &ValidationError{Err: fmt.Errorf("result %d has an empty title", i)}
		}
	}
	return parsed.Results, nil
}

// ParseRecommendations recovers structured records from prose output. It
// tries embedded JSON first, then a labeled-line state machine over numbered
// items and bold headers, then coarser heuristics, so some record almost
// always comes back when the text says anything at all.
func ParseRecommendations(content string) []model.SearchResult {
	if content == "" {
		return nil
	}

	if results, ok := extractResultsJSON(content); ok && len(results) > 0 {
		return results
	}

	results := parseLabeledText(content)

	allURLs := urlRe.FindAllString(content, -1)

	if len(results) == 0 {
		results = parseNumberedSections(content)
	}
	if len(results) == 0 {
		results = []model.SearchResult{singleRecordFallback(content, allURLs)}
	}

	// Backfill records still missing a URL with URLs found anywhere in the
	// text, in order of appearance.
	urlIndex := 0
	for i := range results {
		if results[i].URL == "" && urlIndex < len(allURLs) {
			results[i].URL = allURLs[urlIndex]
			urlIndex++
		}
	}
	return results
}

// extractResultsJSON handles the case where the "prose" is actually a JSON
// payload, either {"results": [...]} or a bare array.
func extractResultsJSON(content string) ([]model.SearchResult, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		var wrapper model.LLMSearchResults
		if err := json.Unmarshal([]byte(content[start:end+1]), &wrapper); err == nil && wrapper.Results != nil {
			return wrapper.Results, true
		}
	}

	start = strings.Index(content, "[")
	end = strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		var list []model.SearchResult
		if err := json.Unmarshal([]byte(content[start:end+1]), &list); err == nil && len(list) > 0 {
			return list, true
		}
	}
	return nil, false
}

// parseLabeledText walks the text line by line, opening a record on a
// numbered item or bold header and routing labeled lines into fields.
// Unlabeled continuation lines accumulate into whichever label was last
// seen.
func parseLabeledText(content string) []model.SearchResult {
	var results []model.SearchResult
	var current *model.SearchResult
	section := ""

	flush := func() {
		if current != nil && current.Title != "" {
			results = append(results, *current)
		}
	}

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		head := line
		if len(head) > 3 {
			head = head[:3]
		}

		switch {
		case line[0] >= '0' && line[0] <= '9' && (strings.Contains(head, ".") || strings.Contains(head, ":")):
			flush()
			current = &model.SearchResult{}
			section = ""
			if idx := strings.Index(line, ":"); idx != -1 {
				current.Title = strings.TrimSpace(strings.Trim(strings.TrimSpace(line[idx+1:]), "*"))
			} else if strings.Contains(line, "**") {
				parts := strings.Split(line, "**")
				if len(parts) > 1 {
					current.Title = strings.TrimSpace(parts[1])
				}
			}

		case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4:
			flush()
			current = &model.SearchResult{Title: strings.TrimSpace(strings.Trim(line, "*"))}
			section = ""

		case strings.Contains(line, ":") && (strings.Contains(lower, "product") ||
			strings.Contains(lower, "name") || strings.Contains(lower, "title")):
			if current == nil {
				current = &model.SearchResult{}
			}
			if idx := strings.Index(line, ":"); idx != -1 {
				value := strings.TrimSpace(strings.Trim(strings.TrimSpace(line[idx+1:]), "*"))
				if value != "" {
					current.Title = value
					section = "title"
				}
			}

		case strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://"):
			if current == nil {
				current = &model.SearchResult{}
			}
			if containsAnyFold(lower, imageURLMarkers) {
				current.ImageURL = line
			} else {
				current.URL = line
			}
			section = "url"

		case strings.HasPrefix(lower, "url:"):
			if current == nil {
				current = &model.SearchResult{}
			}
			value := strings.TrimSpace(line[len("url:"):])
			if strings.HasPrefix(value, "http") {
				current.URL = value
			} else if m := markdownHrefRe.FindStringSubmatch(value); m != nil {
				current.URL = m[1]
			}
			section = "url"

		case strings.HasPrefix(lower, "image url:") || strings.HasPrefix(lower, "image:"):
			if current == nil {
				current = &model.SearchResult{}
			}
			if idx := strings.Index(line, ":"); idx != -1 {
				value := strings.TrimSpace(line[idx+1:])
				if strings.HasPrefix(value, "http") {
					current.ImageURL = value
				}
			}
			section = "image_url"

		case strings.HasPrefix(lower, "description:"):
			if current == nil {
				current = &model.SearchResult{}
			}
			current.Description = strings.TrimSpace(line[len("description:"):])
			section = "description"

		case strings.Contains(lower, "why") && strings.Contains(lower, "match"):
			if current == nil {
				current = &model.SearchResult{}
			}
			if idx := strings.Index(line, ":"); idx != -1 {
				if why := strings.TrimSpace(line[idx+1:]); why != "" {
					current.WhyMatches = why
				}
			}
			section = "why_matches"

		case strings.Contains(lower, "additional") || strings.Contains(lower, "information"):
			if current == nil {
				current = &model.SearchResult{}
			}
			if idx := strings.Index(line, ":"); idx != -1 {
				if info := strings.TrimSpace(line[idx+1:]); info != "" {
					current.AdditionalInfo = appendText(current.AdditionalInfo, info)
				}
			}
			section = "additional_info"

		default:
			if current == nil {
				continue
			}
			switch {
			case section == "description" || (section == "" && current.Description == ""):
				current.Description = appendText(current.Description, line)
			case section == "why_matches":
				current.WhyMatches = appendText(current.WhyMatches, line)
			case section == "additional_info":
				current.AdditionalInfo = appendText(current.AdditionalInfo, line)
			}
		}
	}
	flush()
	return results
}

// parseNumberedSections is the second-tier heuristic: split on numbered
// boundaries and scrape a title, URL, and description out of each section.
func parseNumberedSections(content string) []model.SearchResult {
	bounds := numberedItemRe.FindAllStringIndex("\n"+content, -1)
	if len(bounds) == 0 {
		return nil
	}

	padded := "\n" + content
	var results []model.SearchResult
	for i, b := range bounds {
		sectionEnd := len(padded)
		if i+1 < len(bounds) {
			sectionEnd = bounds[i+1][0]
		}
		section := padded[b[1]:sectionEnd]

		var rec model.SearchResult
		if urls := urlRe.FindAllString(section, -1); len(urls) > 0 {
			rec.URL = urls[0]
		}

		lines := strings.Split(section, "\n")
		firstLine := strings.TrimSpace(lines[0])
		if idx := strings.Index(firstLine, ":"); idx != -1 {
			title := strings.TrimSpace(titlePrefixRe.ReplaceAllString(strings.TrimSpace(firstLine[:idx]), ""))
			if title == "" {
				title = placeholderTitle
			}
			rec.Title = title
		} else if m := boldRe.FindStringSubmatch(firstLine); m != nil {
			rec.Title = strings.TrimSpace(m[1])
		} else if firstLine != "" {
			rec.Title = truncateRunes(firstLine, 100)
		} else {
			rec.Title = placeholderTitle
		}

		var descLines []string
		for _, l := range lines[1:] {
			if t := strings.TrimSpace(l); t != "" {
				descLines = append(descLines, t)
			}
		}
		if len(descLines) > 0 {
			rec.Description = truncateRunes(strings.Join(descLines, "\n"), 500)
		}

		if rec.Title != "" {
			results = append(results, rec)
		}
	}
	return results
}

// singleRecordFallback synthesizes exactly one record from whatever the text
// offers: the first bolded phrase as title, the raw text as description.
func singleRecordFallback(content string, allURLs []string) model.SearchResult {
	title := placeholderTitle
	if m := boldRe.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}
	description := content
	if len([]rune(content)) > 500 {
		description = truncateRunes(content, 500) + "..."
	}
	relevance := 1.0
	rec := model.SearchResult{
		Title:       title,
		Description: description,
		Relevance:   &relevance,
	}
	if len(allURLs) > 0 {
		rec.URL = allURLs[0]
	}
	return rec
}

func appendText(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + " " + line
}

func containsAnyFold(lower string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
