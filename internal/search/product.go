package search

import "strings"

var productPathPatterns = []string{
	"/dp/",
	"/gp/product/",
	"/itm/",
	"/p/",
	"/product/",
	"/products/",
	"/item/",
	"/listing/",
	"/ip/",
	"/site/",
	"/buy/",
	"/shop/",
}

var nonProductPathPatterns = []string{
	"/s?",
	"/s/",
	"/search",
	"/category",
	"/categories",
	"/browse",
	"/c/",
	"/shop-all",
	"/collections",
	"/results",
	"/list",
}

// IsProductPage classifies a URL as a single-item detail page rather than a
// search, category, or listing page. Negative patterns win over positive
// ones, and a positive match needs a meaningful path segment after the
// pattern. The generic set has asymmetric recall on the biggest retailers,
// so Amazon, eBay, and Etsy get their own rules.
func IsProductPage(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)

	for _, pattern := range nonProductPathPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	for _, pattern := range productPathPatterns {
		idx := strings.Index(lower, pattern)
		if idx == -1 {
			continue
		}
		after := lower[idx+len(pattern):]
		segment := after
		if slash := strings.Index(after, "/"); slash != -1 {
			segment = after[:slash]
		}
		if len(segment) > 2 {
			return true
		}
	}

	if strings.Contains(lower, "amazon.com") {
		return strings.Contains(lower, "/dp/") || strings.Contains(lower, "/gp/product/")
	}
	if strings.Contains(lower, "ebay.com") {
		return strings.Contains(lower, "/itm/") ||
			(strings.Contains(lower, "/p/") && !strings.Contains(lower, "/search"))
	}
	if strings.Contains(lower, "etsy.com") {
		return strings.Contains(lower, "/listing/")
	}

	return false
}
