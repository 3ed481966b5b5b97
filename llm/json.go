package llm

import "strings"

// StripCodeFences removes a surrounding markdown code fence from a model
// completion, so fenced JSON unmarshals cleanly.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
