package editor

import (
	"errors"
	"fmt"
	"strings"

	"recitebot/internal/studyset"
)

// DefaultBookName is used by Snapshot when the book name is blank.
const DefaultBookName = "Untitled Book"

// ErrIndexOutOfRange reports an index outside the current list.
var ErrIndexOutOfRange = errors.New("chapter index out of range")

// Field selects which part of a chapter Edit replaces.
type Field int

const (
	FieldTitle Field = iota
	FieldContent
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldContent:
		return "content"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// ParseField maps "title" or "content" (any case) to a Field.
func ParseField(value string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "title":
		return FieldTitle, nil
	case "content":
		return FieldContent, nil
	default:
		return 0, fmt.Errorf("unknown chapter field %q", value)
	}
}

// Entry is one row of the working copy. Index always equals the entry's
// position after a delete.
type Entry struct {
	Index   int
	Title   string
	Content string
}

// Snapshot is the trimmed, defaulted value handed to persistence or transport.
type Snapshot struct {
	BookName string
	Chapters []studyset.Chapter
}

// StudySet converts the snapshot into a study set titled with the book name.
func (s Snapshot) StudySet() studyset.StudySet {
	return studyset.StudySet{Title: s.BookName, Chapters: append([]studyset.Chapter{}, s.Chapters...)}
}

// Editor holds the working copy behind a chapter list view. It is owned by a
// single UI loop and is not safe for concurrent use.
type Editor struct {
	bookName string
	entries  []Entry
	empty    bool
}

// New returns an editor showing the empty-state marker.
func New() *Editor {
	return &Editor{empty: true}
}

// Render replaces the list with chapters. No chapters shows the empty-state
// marker.
func (e *Editor) Render(chapters []studyset.Chapter) {
	e.entries = make([]Entry, 0, len(chapters))
	for i, ch := range chapters {
		e.entries = append(e.entries, Entry{Index: i, Title: ch.Title, Content: ch.Content})
	}
	e.empty = len(e.entries) == 0
}

// Edit replaces one field of the chapter at index. Blank values are kept
// as typed; defaults are applied by Delete and Snapshot.
func (e *Editor) Edit(index int, field Field, value string) error {
	if index < 0 || index >= len(e.entries) {
		return fmt.Errorf("edit chapter %d: %w", index, ErrIndexOutOfRange)
	}
	switch field {
	case FieldTitle:
		e.entries[index].Title = value
	case FieldContent:
		e.entries[index].Content = value
	default:
		return fmt.Errorf("edit chapter %d: unknown %s", index, field)
	}
	return nil
}

// Add appends "New Chapter <n+1>" with empty content and clears the
// empty-state marker. It returns the new entry's index.
func (e *Editor) Add() int {
	n := len(e.entries)
	e.entries = append(e.entries, Entry{Index: n, Title: fmt.Sprintf("New Chapter %d", n+1)})
	e.empty = false
	return n
}

// Delete removes the chapter at index. Remaining entries are renumbered
// 0..N-1 and blank titles become "Chapter <i+1>"; an emptied list shows the
// empty-state marker instead.
func (e *Editor) Delete(index int) error {
	if index < 0 || index >= len(e.entries) {
		return fmt.Errorf("delete chapter %d: %w", index, ErrIndexOutOfRange)
	}
	e.entries = append(e.entries[:index], e.entries[index+1:]...)
	if len(e.entries) == 0 {
		e.empty = true
		return nil
	}
	for i := range e.entries {
		e.entries[i].Index = i
		if strings.TrimSpace(e.entries[i].Title) == "" {
			e.entries[i].Title = defaultTitle(i)
		}
	}
	return nil
}

// SetBookName stores the raw book name as typed.
func (e *Editor) SetBookName(name string) {
	e.bookName = name
}

// BookName returns the raw book name.
func (e *Editor) BookName() string {
	return e.bookName
}

// Entries returns a copy of the working copy.
func (e *Editor) Entries() []Entry {
	return append([]Entry(nil), e.entries...)
}

// Len reports the number of chapters.
func (e *Editor) Len() int {
	return len(e.entries)
}

// Empty reports whether the empty-state marker is shown.
func (e *Editor) Empty() bool {
	return e.empty
}

// Snapshot reads the working copy into a transport value: the trimmed book
// name (default "Untitled Book") and each chapter's trimmed title (default
// "Chapter <i+1>") and trimmed content.
func (e *Editor) Snapshot() Snapshot {
	name := strings.TrimSpace(e.bookName)
	if name == "" {
		name = DefaultBookName
	}
	chapters := make([]studyset.Chapter, 0, len(e.entries))
	for i, entry := range e.entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = defaultTitle(i)
		}
		chapters = append(chapters, studyset.Chapter{Title: title, Content: strings.TrimSpace(entry.Content)})
	}
	return Snapshot{BookName: name, Chapters: chapters}
}

func defaultTitle(i int) string {
	return fmt.Sprintf("Chapter %d", i+1)
}
