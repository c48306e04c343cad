// Package schema prepares JSON Schema documents for provider structured-output
// APIs, which accept only a small subset of the vocabulary and no references.
package schema

import (
	"strings"

	"go.uber.org/zap"
)

// Document is a raw JSON Schema fragment represented as a generic map.
type Document = map[string]any

// Prepare inlines $defs references and then strips the document down to the
// keywords structured-output APIs accept. The input is never mutated and the
// same input always yields the same output.
func Prepare(doc Document, log *zap.Logger) Document {
	inlined := InlineDefs(doc, log)
	cleaned, _ := Clean(inlined).(Document)
	return cleaned
}

// InlineDefs replaces every $ref with the referenced definition from $defs.
// Unresolved references are logged and left intact rather than failing, to
// stay tolerant of schema evolution.
func InlineDefs(doc Document, log *zap.Logger) Document {
	if log == nil {
		log = zap.NewNop()
	}
	defsAny, ok := doc["$defs"]
	if !ok {
		return doc
	}
	defs, ok := defsAny.(Document)
	if !ok {
		return doc
	}

	var inline func(node any) any
	inline = func(node any) any {
		switch v := node.(type) {
		case Document:
			if ref, ok := v["$ref"].(string); ok {
				parts := strings.Split(ref, "/")
				name := parts[len(parts)-1]
				if def, ok := defs[name]; ok {
					return inline(def)
				}
				log.Warn("schema_ref_unresolved",
					zap.String("ref", name),
					zap.Strings("available", defNames(defs)))
				return v
			}
			out := make(Document, len(v))
			for k, val := range v {
				out[k] = inline(val)
			}
			return out
		case []any:
			out := make([]any, len(v))
			for i, item := range v {
				out[i] = inline(item)
			}
			return out
		default:
			return node
		}
	}

	inlined, _ := inline(doc).(Document)
	delete(inlined, "$defs")
	return inlined
}

// Clean walks a schema node and keeps only type, properties, required and
// items. Annotation and constraint keywords (description, examples, bounds)
// are dropped because the target API rejects unknown keywords.
func Clean(node any) any {
	switch v := node.(type) {
	case Document:
		cleaned := Document{}
		for k, val := range v {
			switch k {
			case "properties":
				if props, ok := val.(Document); ok {
					out := make(Document, len(props))
					for name, propSchema := range props {
						out[name] = Clean(propSchema)
					}
					cleaned[k] = out
				}
			case "type", "required", "items":
				cleaned[k] = Clean(val)
			}
		}
		return cleaned
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Clean(item)
		}
		return out
	default:
		return node
	}
}

func defNames(defs Document) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	return names
}
