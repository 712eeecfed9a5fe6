package studyset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"recitebot/internal/textutil"
)

// ParamKey is the query parameter that carries chapters to the study page.
const ParamKey = "data"

// ErrNotChapterData reports payloads that hold no recognizable chapter array.
var ErrNotChapterData = errors.New("payload is not chapter data")

// Encode renders a study set as indented JSON for document files.
func Encode(set StudySet) ([]byte, error) {
	if set.Chapters == nil {
		set.Chapters = []Chapter{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode study set: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a study set produced by Encode. It reports false for
// malformed JSON or a non-object payload; unknown fields are ignored.
func Decode(data []byte) (StudySet, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return StudySet{}, false
	}
	var set StudySet
	if err := json.Unmarshal(trimmed, &set); err != nil {
		return StudySet{}, false
	}
	if set.Chapters == nil {
		set.Chapters = []Chapter{}
	}
	return set, true
}

// EncodeChapters renders a chapter list as indented JSON, the on-disk book format.
func EncodeChapters(chapters []Chapter) ([]byte, error) {
	if chapters == nil {
		chapters = []Chapter{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chapters); err != nil {
		return nil, fmt.Errorf("encode chapters: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeParam renders chapters as a percent-encoded JSON array suitable for a
// single query value. Spaces become %20 so browsers' decodeURIComponent reads
// it back unchanged.
func EncodeParam(chapters []Chapter) (string, error) {
	if chapters == nil {
		chapters = []Chapter{}
	}
	payload, err := json.Marshal(chapters)
	if err != nil {
		return "", fmt.Errorf("encode chapters param: %w", err)
	}
	return strings.ReplaceAll(url.QueryEscape(string(payload)), "+", "%20"), nil
}

// DecodeParam reverses EncodeParam. Bad escapes, malformed JSON or a non-array
// value report false.
func DecodeParam(value string) ([]Chapter, bool) {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return nil, false
	}
	trimmed := strings.TrimSpace(decoded)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var chapters []Chapter
	if err := json.Unmarshal([]byte(trimmed), &chapters); err != nil {
		return nil, false
	}
	if chapters == nil {
		chapters = []Chapter{}
	}
	return chapters, true
}

// ResultURL returns base with the chapters attached as the data parameter.
// Existing query parameters on base are preserved.
func ResultURL(base string, chapters []Chapter) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse result url: %w", err)
	}
	encoded, err := EncodeParam(chapters)
	if err != nil {
		return "", err
	}
	query := u.Query()
	query.Del(ParamKey)
	raw := query.Encode()
	if raw != "" {
		raw += "&"
	}
	u.RawQuery = raw + ParamKey + "=" + encoded
	return u.String(), nil
}

// ChaptersFromURL extracts chapters from a study page URL, falling back to the
// sample chapters when the parameter is missing or unreadable. The boolean
// reports whether the URL carried usable data.
func ChaptersFromURL(raw string) ([]Chapter, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return SampleChapters(), false
	}
	value, ok := rawQueryValue(u.RawQuery, ParamKey)
	if !ok {
		return SampleChapters(), false
	}
	chapters, ok := DecodeParam(value)
	if !ok {
		return SampleChapters(), false
	}
	return chapters, true
}

// rawQueryValue finds key in a raw query string without unescaping its value,
// leaving that to DecodeParam.
func rawQueryValue(rawQuery, key string) (string, bool) {
	for _, pair := range strings.Split(rawQuery, "&") {
		name, value, _ := strings.Cut(pair, "=")
		if name == key {
			return value, true
		}
	}
	return "", false
}

type looseChapter struct {
	Title   *string `json:"Title"`
	Content *string `json:"Content"`
}

// ParseChapters extracts a chapter list from text-processing output. It
// accepts a bare array, an object wrapping the array under "chapters" (any
// case) or under its only array-valued key, or a single chapter object.
// Markdown code fences and surrounding prose are tolerated. Entries with
// neither a title nor content are dropped.
func ParseChapters(data []byte) ([]Chapter, error) {
	payload := textutil.StripCodeFence(string(data))
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrNotChapterData)
	}
	chapters, err := parseChapterPayload([]byte(payload))
	if err == nil {
		return chapters, nil
	}
	for _, candidate := range jsonCandidates(payload) {
		if candidate == payload {
			continue
		}
		if chapters, extractErr := parseChapterPayload([]byte(candidate)); extractErr == nil {
			return chapters, nil
		}
	}
	return nil, err
}

func parseChapterPayload(payload []byte) ([]Chapter, error) {
	switch payload[0] {
	case '[':
		var entries []looseChapter
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotChapterData, err)
		}
		return fromLoose(entries), nil
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(payload, &object); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotChapterData, err)
		}
		if raw, ok := wrappedArray(object); ok {
			var entries []looseChapter
			if err := json.Unmarshal(raw, &entries); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrNotChapterData, err)
			}
			return fromLoose(entries), nil
		}
		var single looseChapter
		if err := json.Unmarshal(payload, &single); err == nil && (single.Title != nil || single.Content != nil) {
			return fromLoose([]looseChapter{single}), nil
		}
		return nil, fmt.Errorf("%w: object has no chapter array", ErrNotChapterData)
	default:
		return nil, fmt.Errorf("%w: unexpected leading %q", ErrNotChapterData, payload[0])
	}
}

func wrappedArray(object map[string]json.RawMessage) (json.RawMessage, bool) {
	for key, raw := range object {
		if strings.EqualFold(key, "chapters") && isArray(raw) {
			return raw, true
		}
	}
	var found json.RawMessage
	count := 0
	for _, raw := range object {
		if isArray(raw) {
			found = raw
			count++
		}
	}
	return found, count == 1
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func fromLoose(entries []looseChapter) []Chapter {
	chapters := make([]Chapter, 0, len(entries))
	for _, entry := range entries {
		if entry.Title == nil && entry.Content == nil {
			continue
		}
		var ch Chapter
		if entry.Title != nil {
			ch.Title = *entry.Title
		}
		if entry.Content != nil {
			ch.Content = *entry.Content
		}
		chapters = append(chapters, ch)
	}
	return chapters
}

// jsonCandidates returns the outermost object span and array span of
// content, earliest start first. Either may begin inside prose, so callers
// try each in turn.
func jsonCandidates(content string) []string {
	type span struct {
		start int
		text  string
	}
	var spans []span
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(content, pair[0])
		end := strings.LastIndex(content, pair[1])
		if start >= 0 && end > start {
			spans = append(spans, span{start: start, text: strings.TrimSpace(content[start : end+1])})
		}
	}
	if len(spans) == 2 && spans[1].start < spans[0].start {
		spans[0], spans[1] = spans[1], spans[0]
	}
	candidates := make([]string, 0, len(spans))
	for _, sp := range spans {
		candidates = append(candidates, sp.text)
	}
	return candidates
}
