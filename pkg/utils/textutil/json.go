// ABOUTME: Helpers for pulling JSON payloads out of LLM responses
// ABOUTME: Handles fenced code blocks and bare bracket/brace payloads

package textutil

import (
	"regexp"
	"strings"
)

var (
	jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFence  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// ExtractJSONArray pulls the first JSON array out of an LLM response,
// tolerating markdown code fences and surrounding prose. Returns an empty
// string when no array is found.
func ExtractJSONArray(response string) string {
	return extractJSON(response, '[', ']')
}

// ExtractJSONObject pulls the first JSON object out of an LLM response.
func ExtractJSONObject(response string) string {
	return extractJSON(response, '{', '}')
}

func extractJSON(response string, open, close byte) string {
	candidate := response

	if m := jsonFence.FindStringSubmatch(response); m != nil {
		candidate = m[1]
	} else if m := anyFence.FindStringSubmatch(response); m != nil {
		candidate = m[1]
	}

	candidate = strings.TrimSpace(candidate)

	start := strings.IndexByte(candidate, open)
	end := strings.LastIndexByte(candidate, close)
	if start == -1 || end <= start {
		return ""
	}

	return candidate[start : end+1]
}
