package types

import "strings"

// CleanJSONFromMarkdown removes markdown code block wrappers from JSON strings.
// This is commonly needed when parsing LLM responses that may include markdown formatting.
func CleanJSONFromMarkdown(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the substring from the first '{' to the last '}'.
// LLMs sometimes wrap the JSON object in prose; this recovers the object part.
// The second return value is false when no balanced-looking object is present.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
