package core

import "github.com/agenthands/concierge/internal/schema"

// ResultsSchema is the full JSON Schema for the model's output collection,
// with the SearchResult shape behind a $defs reference and the annotation
// keywords a schema generator would emit. It must go through schema.Prepare
// before reaching a provider.
func ResultsSchema() schema.Document {
	return schema.Document{
		"type":  "object",
		"title": "LLMSearchResults",
		"properties": schema.Document{
			"results": schema.Document{
				"type":  "array",
				"items": schema.Document{"$ref": "#/$defs/SearchResult"},
			},
		},
		"required": []any{"results"},
		"$defs": schema.Document{
			"SearchResult": schema.Document{
				"type":  "object",
				"title": "SearchResult",
				"properties": schema.Document{
					"title": schema.Document{
						"type":        "string",
						"minLength":   1,
						"description": "Title of the result",
					},
					"description": schema.Document{
						"type":        "string",
						"description": "Description of the result",
					},
					"url": schema.Document{
						"type":        "string",
						"description": "URL of the result",
					},
					"image_url": schema.Document{
						"type":        "string",
						"description": "Image URL for the product",
					},
					"relevance": schema.Document{
						"type":        "number",
						"minimum":     0.0,
						"maximum":     1.0,
						"description": "Relevance score (0.0-1.0)",
					},
					"why_matches": schema.Document{
						"type":        "string",
						"description": "Why the product matches user preferences",
					},
					"additional_info": schema.Document{
						"type":        "string",
						"description": "Additional metadata or notes",
					},
					"highlights": schema.Document{
						"type":        "array",
						"items":       schema.Document{"type": "string"},
						"description": "Bullet-point highlights for quick display",
					},
				},
				"required": []any{"title"},
			},
		},
	}
}
