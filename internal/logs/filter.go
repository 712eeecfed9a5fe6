package logs

import (
	"strings"

	"recitebot/internal/logging"
)

// Filter selects log lines. Zero-value fields match everything.
type Filter struct {
	Component string
	RequestID string
	Contains  string
}

// Match reports whether line passes every configured condition. Console and
// JSON lines are both understood.
func (f Filter) Match(line string) bool {
	if c := strings.TrimSpace(f.Component); c != "" {
		if !strings.Contains(line, "["+c+"]") &&
			!strings.Contains(line, `"`+logging.FieldComponent+`":"`+c+`"`) {
			return false
		}
	}
	if id := strings.TrimSpace(f.RequestID); id != "" {
		if !strings.Contains(line, logging.FieldCorrelationID+"="+id) &&
			!strings.Contains(line, `"`+logging.FieldCorrelationID+`":"`+id+`"`) {
			return false
		}
	}
	if s := f.Contains; s != "" && !strings.Contains(line, s) {
		return false
	}
	return true
}

// Apply returns the lines that match f.
func (f Filter) Apply(lines []string) []string {
	out := lines[:0:0]
	for _, line := range lines {
		if f.Match(line) {
			out = append(out, line)
		}
	}
	return out
}
