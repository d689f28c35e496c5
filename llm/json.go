package llm

import (
	"encoding/json"
	"strings"
)

// StripCodeFences removes a markdown code fence the model sometimes wraps
// around its JSON output.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeJSONObject tries to decode model text as a JSON object. Returns nil
// when the text is not one; the caller decides whether that warrants a
// repair pass.
func DecodeJSONObject(text string) map[string]interface{} {
	cleaned := StripCodeFences(text)
	if cleaned == "" {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil
	}
	return obj
}
