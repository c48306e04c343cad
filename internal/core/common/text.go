package common

import (
	"net/url"
	"regexp"
	"strings"
)

const snippetMaxLength = 400

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	headerRe       = regexp.MustCompile(`#{1,6}\s*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	bulletNumberRe = regexp.MustCompile(`^\d+[\.\)]\s`)
)

// CleanSnippet turns raw search-engine snippet text into a compact summary
// suitable for UI display: markdown stripped, whitespace collapsed, truncated
// to ~400 characters preferring a sentence boundary. Cleaning an
// already-clean short string returns it unchanged.
func CleanSnippet(text string) string {
	if text == "" {
		return ""
	}
	cleaned := markdownLinkRe.ReplaceAllString(text, "$1")
	cleaned = headerRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "*", " ")
	cleaned = strings.ReplaceAll(cleaned, `\n`, " ")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return ""
	}

	runes := []rune(cleaned)
	if len(runes) > snippetMaxLength {
		truncated := string(runes[:snippetMaxLength])
		lastPeriod := strings.LastIndex(truncated, ".")
		if lastPeriod > 120 {
			cleaned = truncated[:lastPeriod+1]
		} else {
			cleaned = strings.TrimSpace(truncated) + "…"
		}
	}
	return cleaned
}

// ExtractHighlights pulls bullet-like lines out of raw snippet text, cleaned,
// up to maxItems. Returns nil when nothing bullet-shaped is found.
func ExtractHighlights(text string, maxItems int) []string {
	if text == "" {
		return nil
	}
	var highlights []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if strings.HasPrefix(stripped, "-") || strings.HasPrefix(stripped, "*") ||
			bulletNumberRe.MatchString(stripped) {
			clean := CleanSnippet(strings.TrimLeft(stripped, "-*0123456789. )"))
			if clean != "" {
				highlights = append(highlights, clean)
			}
		}
		if len(highlights) >= maxItems {
			break
		}
	}
	return highlights
}

// NormalizeURL canonicalizes a URL for matching across search outputs:
// query and fragment dropped, trailing slashes removed, lowercased.
// Idempotent.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "/"))
	}
	u.RawQuery = ""
	u.Fragment = ""
	normalized := strings.TrimRight(u.String(), "/")
	return strings.ToLower(normalized)
}
