package review

import (
	"database/sql"
	"time"
)

const itemColumns = "id, book_name, chapter_title, strategy, added_at, review_count, last_reviewed_at, next_review_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (Item, error) {
	var (
		item        Item
		addedRaw    string
		reviewedRaw sql.NullString
		nextRaw     sql.NullString
	)
	if err := scanner.Scan(
		&item.ID,
		&item.BookName,
		&item.ChapterTitle,
		&item.Strategy,
		&addedRaw,
		&item.ReviewCount,
		&reviewedRaw,
		&nextRaw,
	); err != nil {
		return Item{}, err
	}
	item.AddedAt = parseTime(addedRaw)
	item.LastReviewedAt = parseNullableTime(reviewedRaw)
	item.NextReviewAt = parseNullableTime(nextRaw)
	return item, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullableTime(raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
