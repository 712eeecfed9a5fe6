package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recitebot/internal/textutil"
)

// DecodeJSON unmarshals model output into target. Code fences and prose
// around a single JSON object or array are tolerated.
func DecodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}
	cleaned := extractPayload(trimmed)
	if cleaned == "" || cleaned == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, summarize(trimmed))
	}
	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		return fmt.Errorf("%w (cleaned payload snippet: %s)", err, summarize(cleaned))
	}
	return nil
}

func extractPayload(content string) string {
	trimmed := textutil.StripCodeFence(content)
	if trimmed == "" || trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(trimmed, pair[0])
		end := strings.LastIndex(trimmed, pair[1])
		if start >= 0 && end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func summarize(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	return textutil.FirstLine(clean, 160)
}
