package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/concierge/internal/model"
)

// Retriever issues one keyword search and turns raw hits into candidates:
// ecommerce domain policy, product-page filtering, and best-effort images.
// It owns no retry policy; the search call is single-shot.
type Retriever struct {
	engine Engine
	log    *zap.Logger

	ecommerceOnly    bool
	productPagesOnly bool
}

func NewRetriever(engine Engine, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{
		engine:           engine,
		log:              log,
		ecommerceOnly:    true,
		productPagesOnly: true,
	}
}

// Retrieve runs the search and returns up to maxResults candidates. A zero
// result set is not an error here; the pipeline decides what it means.
func (r *Retriever) Retrieve(ctx context.Context, query string, maxResults int) ([]model.Candidate, error) {
	q := Query{
		Query:         enhanceQuery(query),
		MaxResults:    maxResults,
		SearchDepth:   "advanced",
		IncludeImages: true,
	}
	if r.ecommerceOnly {
		q.IncludeDomains = EcommerceDomains()
		q.ExcludeDomains = ExcludedDomains()
	}
	// Over-fetch to compensate for post-filter attrition.
	if r.ecommerceOnly && r.productPagesOnly {
		q.MaxResults = maxResults * 3
	}

	resp, err := r.engine.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	results := resp.Results
	if r.productPagesOnly {
		var productResults []Result
		for _, res := range results {
			if IsProductPage(res.URL) {
				productResults = append(productResults, res)
			}
		}
		results = productResults
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	matched := MatchImagesToResults(results, resp.Images)

	candidates := make([]model.Candidate, 0, len(results))
	for idx, res := range results {
		imageURL := res.ImageURL
		if img, ok := matched[idx]; ok {
			imageURL = img
		}
		if imageURL == "" && len(res.Images) > 0 {
			imageURL = PickEmbeddedImage(res.Images)
		}
		candidates = append(candidates, model.Candidate{
			Title:      res.Title,
			URL:        res.URL,
			ImageURL:   imageURL,
			Score:      res.Score,
			RawContent: res.Content,
		})
	}

	r.log.Debug("candidates_retrieved",
		zap.Int("raw", len(resp.Results)),
		zap.Int("kept", len(candidates)),
		zap.Int("max_results", maxResults))
	return candidates, nil
}

// enhanceQuery appends ecommerce bias terms unless the query already carries
// them.
func enhanceQuery(query string) string {
	lower := strings.ToLower(query)
	var terms []string
	if !strings.Contains(lower, "buy") {
		terms = append(terms, "buy")
	}
	if !strings.Contains(lower, "product") && !strings.Contains(lower, "item") {
		terms = append(terms, "product")
	}
	if len(terms) == 0 {
		return query
	}
	return query + " " + strings.Join(terms, " ")
}
