package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// UnnamedFileName is returned when a name has no characters that survive sanitizing.
const UnnamedFileName = "unnamed"

// SafeFileName reduces a display name to a filesystem-safe file stem.
// Letters, digits, spaces, hyphens and underscores are kept; everything else
// is dropped. Input is NFC-normalized first so composed and decomposed forms
// of the same name map to the same file. Trailing whitespace is removed.
func SafeFileName(name string) string {
	name = norm.NFC.String(name)
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsNumber(r):
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.TrimRightFunc(b.String(), unicode.IsSpace)
	if out == "" {
		return UnnamedFileName
	}
	return out
}

// FirstLine returns the first non-blank line of value, trimmed and capped at
// limit runes (0 means no cap).
func FirstLine(value string, limit int) string {
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if limit > 0 {
			runes := []rune(line)
			if len(runes) > limit {
				return string(runes[:limit]) + "..."
			}
		}
		return line
	}
	return ""
}

// StripCodeFence removes a surrounding markdown code fence (optionally tagged
// json) from model output. Unfenced input is returned trimmed.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
