package schema

import (
	"github.com/google/generative-ai-go/genai"
)

// ResponseSchema converts the answer schema document into the provider's
// schema type, so the strict output contract and the local validator are
// driven by the same artifact. Keywords the provider schema cannot express
// (pattern, minLength, additionalProperties) are dropped; the local
// validator still enforces them.
func (a *Artifact) ResponseSchema() *genai.Schema {
	return toGenaiSchema(a.doc)
}

func toGenaiSchema(node map[string]interface{}) *genai.Schema {
	s := &genai.Schema{}

	if desc, ok := node["description"].(string); ok {
		s.Description = desc
	}

	switch node["type"] {
	case "object":
		s.Type = genai.TypeObject
		if props, ok := node["properties"].(map[string]interface{}); ok {
			s.Properties = make(map[string]*genai.Schema, len(props))
			for name, raw := range props {
				if child, ok := raw.(map[string]interface{}); ok {
					s.Properties[name] = toGenaiSchema(child)
				}
			}
		}
		if req, ok := node["required"].([]interface{}); ok {
			for _, r := range req {
				if name, ok := r.(string); ok {
					s.Required = append(s.Required, name)
				}
			}
		}
	case "array":
		s.Type = genai.TypeArray
		if items, ok := node["items"].(map[string]interface{}); ok {
			s.Items = toGenaiSchema(items)
		}
	case "string":
		s.Type = genai.TypeString
		if enum, ok := node["enum"].([]interface{}); ok {
			for _, e := range enum {
				if v, ok := e.(string); ok {
					s.Enum = append(s.Enum, v)
				}
			}
		}
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}

	return s
}
