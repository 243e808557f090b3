// File: internal/llmutil/parser.go
package llmutil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// markdownFenceRegex extracts a JSON object when the model wrapped its
// answer in a markdown code block. \x60 is a backtick; Go raw strings
// cannot contain them.
var markdownFenceRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")

// ParseJSONObject parses a language-model response into a target type
// using a two-stage pipeline: a strict parse of the whole text, then a
// salvage parse of the first brace-delimited substring (handling markdown
// fences and conversational padding). It never invents field values; if
// both stages fail, the error wraps the parse failure and the caller keeps
// the raw text for diagnostics.
func ParseJSONObject[T any](response string) (*T, error) {
	trimmed := strings.TrimSpace(response)

	var result T
	if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
		return &result, nil
	}

	candidate, ok := salvageObject(trimmed)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in model response")
	}
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal salvaged JSON: %w", err)
	}
	return &result, nil
}

// salvageObject locates the most plausible JSON object inside free text.
func salvageObject(s string) (string, bool) {
	if matches := markdownFenceRegex.FindStringSubmatch(s); len(matches) > 1 {
		return matches[1], true
	}

	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last <= first {
		return "", false
	}
	return s[first : last+1], true
}

// Truncate shortens a string for error messages and logs.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
