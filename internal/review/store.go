package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"recitebot/internal/logging"
)

var (
	ErrNotFound        = errors.New("recite item not found")
	ErrUnknownStrategy = errors.New("unknown review strategy")
	ErrInvalidItem     = errors.New("book name and chapter title are required")
)

// Item is one chapter on the recite list.
type Item struct {
	ID             string     `json:"id"`
	BookName       string     `json:"book_name"`
	ChapterTitle   string     `json:"chapter_title"`
	Strategy       string     `json:"strategy"`
	AddedAt        time.Time  `json:"added_at"`
	ReviewCount    int        `json:"review_count"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	NextReviewAt   *time.Time `json:"next_review_at"`
}

// ItemID returns the recite list key for a chapter.
func ItemID(bookName, chapterTitle string) string {
	return bookName + ":" + chapterTitle
}

// Store persists the recite list in SQLite. It is safe for concurrent use.
type Store struct {
	db              *sql.DB
	path            string
	now             func() time.Time
	defaultStrategy string
	logger          *slog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultStrategy sets the strategy used when Add is given none.
func WithDefaultStrategy(name string) Option {
	return func(s *Store) {
		if Known(name) {
			s.defaultStrategy = strings.ToLower(strings.TrimSpace(name))
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open connects to the database at path, creating it and applying
// migrations as needed.
func Open(path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("open review store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open review store: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps pragmas in effect and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{
		db:              db,
		path:            path,
		now:             time.Now,
		defaultStrategy: DefaultStrategy,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	store.logger = logging.NewComponentLogger(store.logger, "review")
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Add puts a chapter on the recite list, due immediately. Adding an item
// that already exists leaves it untouched and reports created=false.
func (s *Store) Add(ctx context.Context, bookName, chapterTitle, strategy string) (Item, bool, error) {
	bookName, chapterTitle, err := normalizeKey(bookName, chapterTitle)
	if err != nil {
		return Item{}, false, err
	}
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	if strategy == "" {
		strategy = s.defaultStrategy
	}
	if !Known(strategy) {
		return Item{}, false, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	id := ItemID(bookName, chapterTitle)
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO recite_items (id, book_name, chapter_title, strategy, added_at, review_count, last_reviewed_at, next_review_at)
         VALUES (?, ?, ?, ?, ?, 0, NULL, ?)
         ON CONFLICT(id) DO NOTHING`,
		id, bookName, chapterTitle, strategy, formatTime(now), formatTime(now),
	)
	if err != nil {
		return Item{}, false, fmt.Errorf("add recite item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Item{}, false, fmt.Errorf("add recite item: %w", err)
	}
	item, err := s.Get(ctx, bookName, chapterTitle)
	if err != nil {
		return Item{}, false, err
	}
	if affected > 0 {
		s.logger.Info("recite item added",
			logging.String(logging.FieldItemID, id),
			logging.String("strategy", strategy),
		)
	}
	return item, affected > 0, nil
}

// Remove deletes a chapter from the recite list. Removing an absent item is
// not an error; removed reports whether a row was deleted.
func (s *Store) Remove(ctx context.Context, bookName, chapterTitle string) (bool, error) {
	bookName, chapterTitle, err := normalizeKey(bookName, chapterTitle)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM recite_items WHERE id = ?", ItemID(bookName, chapterTitle))
	if err != nil {
		return false, fmt.Errorf("remove recite item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove recite item: %w", err)
	}
	return affected > 0, nil
}

// MarkMemorized records a completed review and schedules the next one.
func (s *Store) MarkMemorized(ctx context.Context, bookName, chapterTitle string) (Item, error) {
	bookName, chapterTitle, err := normalizeKey(bookName, chapterTitle)
	if err != nil {
		return Item{}, err
	}
	var item Item
	err = s.update(ctx, ItemID(bookName, chapterTitle), func(current *Item) {
		now := s.now().UTC()
		current.ReviewCount++
		current.LastReviewedAt = &now
		next := NextReview(current.ReviewCount, current.Strategy, now)
		current.NextReviewAt = &next
		item = *current
	})
	if err != nil {
		return Item{}, fmt.Errorf("mark memorized: %w", err)
	}
	s.logger.Info("recite item memorized",
		logging.String(logging.FieldItemID, item.ID),
		logging.Int("review_count", item.ReviewCount),
	)
	return item, nil
}

// ChangeStrategy switches an item's strategy, keeping its review count and
// rescheduling from now. It returns the updated item and the old strategy.
func (s *Store) ChangeStrategy(ctx context.Context, bookName, chapterTitle, strategy string) (Item, string, error) {
	bookName, chapterTitle, err := normalizeKey(bookName, chapterTitle)
	if err != nil {
		return Item{}, "", err
	}
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	if !Known(strategy) {
		return Item{}, "", fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	var (
		item Item
		old  string
	)
	err = s.update(ctx, ItemID(bookName, chapterTitle), func(current *Item) {
		old = current.Strategy
		current.Strategy = strategy
		next := NextReview(current.ReviewCount, strategy, s.now().UTC())
		current.NextReviewAt = &next
		item = *current
	})
	if err != nil {
		return Item{}, "", fmt.Errorf("change strategy: %w", err)
	}
	return item, old, nil
}

// Get returns one item.
func (s *Store) Get(ctx context.Context, bookName, chapterTitle string) (Item, error) {
	bookName, chapterTitle, err := normalizeKey(bookName, chapterTitle)
	if err != nil {
		return Item{}, err
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM recite_items WHERE id = ?", ItemID(bookName, chapterTitle))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("get recite item: %w", err)
	}
	return item, nil
}

// List returns every item in the order it was added.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+itemColumns+" FROM recite_items ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("list recite items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recite item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recite items: %w", err)
	}
	return items, nil
}

// Due returns the items whose next review is at or before now.
func (s *Store) Due(ctx context.Context, now time.Time) ([]Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	due := items[:0]
	for _, item := range items {
		if IsDue(item.NextReviewAt, now) {
			due = append(due, item)
		}
	}
	return due, nil
}

func (s *Store) update(ctx context.Context, id string, mutate func(*Item)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	item, err := scanItem(tx.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM recite_items WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load item: %w", err)
	}
	mutate(&item)
	_, err = tx.ExecContext(ctx,
		`UPDATE recite_items SET strategy = ?, review_count = ?, last_reviewed_at = ?, next_review_at = ? WHERE id = ?`,
		item.Strategy, item.ReviewCount, nullableTime(item.LastReviewedAt), nullableTime(item.NextReviewAt), id,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return tx.Commit()
}

func normalizeKey(bookName, chapterTitle string) (string, string, error) {
	bookName = strings.TrimSpace(bookName)
	chapterTitle = strings.TrimSpace(chapterTitle)
	if bookName == "" || chapterTitle == "" {
		return "", "", ErrInvalidItem
	}
	return bookName, chapterTitle, nil
}
