package aiparse

import (
	"fmt"
	"strings"
)

// ExtractJSONObject pulls the JSON object out of a generative model response,
// tolerating markdown code fences and prose around the payload.
func ExtractJSONObject(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	return []byte(text[start : end+1]), nil
}
