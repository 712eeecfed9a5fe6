package review

import (
	"time"

	"recitebot/internal/studyset"
)

// ChapterSource looks up a book's chapters by book name.
type ChapterSource interface {
	ChaptersFor(bookName string) ([]studyset.Chapter, error)
}

// ReciteChapter is a recite list item joined with its chapter content.
type ReciteChapter struct {
	Title          string     `json:"Title"`
	Content        string     `json:"Content"`
	AddedAt        time.Time  `json:"added_at"`
	ReviewCount    int        `json:"review_count"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	NextReviewAt   *time.Time `json:"next_review_at"`
}

// BookGroup holds the recite chapters of one book.
type BookGroup struct {
	BookName string          `json:"book_name"`
	Chapters []ReciteChapter `json:"chapters"`
}

// Collect groups items by book, attaching chapter content from source.
// Items rejected by filter, and items whose book or chapter can no longer be
// found, are skipped. Books appear in the order their first item does.
func Collect(items []Item, source ChapterSource, filter func(Item) bool) []BookGroup {
	groups := []BookGroup{}
	index := make(map[string]int)
	books := make(map[string][]studyset.Chapter)
	missing := make(map[string]bool)

	for _, item := range items {
		if filter != nil && !filter(item) {
			continue
		}
		if missing[item.BookName] {
			continue
		}
		chapters, ok := books[item.BookName]
		if !ok {
			loaded, err := source.ChaptersFor(item.BookName)
			if err != nil {
				missing[item.BookName] = true
				continue
			}
			books[item.BookName] = loaded
			chapters = loaded
		}
		chapter, ok := findChapter(chapters, item.ChapterTitle)
		if !ok {
			continue
		}
		pos, ok := index[item.BookName]
		if !ok {
			pos = len(groups)
			index[item.BookName] = pos
			groups = append(groups, BookGroup{BookName: item.BookName})
		}
		groups[pos].Chapters = append(groups[pos].Chapters, ReciteChapter{
			Title:          chapter.Title,
			Content:        chapter.Content,
			AddedAt:        item.AddedAt,
			ReviewCount:    item.ReviewCount,
			LastReviewedAt: item.LastReviewedAt,
			NextReviewAt:   item.NextReviewAt,
		})
	}
	return groups
}

// DueFilter selects items due at now.
func DueFilter(now time.Time) func(Item) bool {
	return func(item Item) bool {
		return IsDue(item.NextReviewAt, now)
	}
}

func findChapter(chapters []studyset.Chapter, title string) (studyset.Chapter, bool) {
	for _, ch := range chapters {
		if ch.Title == title {
			return ch, true
		}
	}
	return studyset.Chapter{}, false
}
