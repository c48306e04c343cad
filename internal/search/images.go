package search

import (
	"net/url"
	"strings"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

var productImageKeywords = []string{"product", "item", "image", "photo"}

var editorialImageKeywords = []string{
	"article", "blog", "news", "review", "guide", "best-of", "hero", "banner",
}

var skipImageTokens = []string{"icon", "logo", "favicon", "sprite"}

var cdnSubdomainPrefixes = []string{"media.", "cdn.", "images.", "img.", "static.", "assets."}

// MatchImagesToResults assigns images from the global pool to results by
// index. An image is only eligible for a result on the same domain (or a CDN
// subdomain sharing its registrable domain), the filename heuristics must
// score above 5, and each image is used at most once.
func MatchImagesToResults(results []Result, pool []string) map[int]string {
	matched := make(map[int]string)
	used := make(map[string]bool)

	for idx, res := range results {
		resultDomain := hostOf(res.URL)
		if resultDomain == "" {
			continue
		}

		var bestImage string
		bestScore := 0

		for _, img := range pool {
			if used[img] {
				continue
			}
			if !domainsMatch(resultDomain, hostOf(img)) {
				continue
			}
			score := scoreImage(img)
			if score > bestScore {
				bestScore = score
				bestImage = img
			}
		}

		if bestImage != "" && bestScore > 5 {
			matched[idx] = bestImage
			used[bestImage] = true
		}
	}
	return matched
}

// PickEmbeddedImage chooses the best entry from a result's own images array.
// Product keywords and image extensions are preferred; obvious chrome assets
// (icons, logos, favicons, sprites) are skipped outright.
func PickEmbeddedImage(images []string) string {
	var fallback string
	for _, img := range images {
		lower := strings.ToLower(img)
		if containsAny(lower, skipImageTokens) {
			continue
		}
		if containsAny(lower, productImageKeywords) || containsAny(lower, imageExtensions) {
			return img
		}
		if fallback == "" {
			fallback = img
		}
	}
	return fallback
}

func scoreImage(img string) int {
	score := 10
	lower := strings.ToLower(img)
	if containsAny(lower, productImageKeywords) {
		score += 3
	}
	if containsAny(lower, imageExtensions) {
		score += 2
	}
	if containsAny(lower, editorialImageKeywords) {
		score -= 5
	}
	return score
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}

// domainsMatch accepts an exact host match, or a CDN-style subdomain whose
// registrable domain equals the result's.
func domainsMatch(resultDomain, imgDomain string) bool {
	if resultDomain == "" || imgDomain == "" {
		return false
	}
	if imgDomain == resultDomain {
		return true
	}
	if registrableDomain(imgDomain) == registrableDomain(resultDomain) {
		for _, prefix := range cdnSubdomainPrefixes {
			if strings.HasPrefix(imgDomain, prefix) {
				return true
			}
		}
	}
	return false
}

func registrableDomain(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return domain
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
