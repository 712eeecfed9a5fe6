package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"recitebot/internal/fileutil"
	"recitebot/internal/logging"
	"recitebot/internal/studyset"
	"recitebot/internal/textutil"
)

const (
	bookExt      = ".json"
	lockFileName = ".library.lock"

	// ModifiedLayout formats BookInfo.Modified.
	ModifiedLayout = "2006-01-02 15:04"
)

var (
	ErrEmptyBookName   = errors.New("book name is empty")
	ErrNoChapters      = errors.New("chapter list is empty")
	ErrInvalidFilename = errors.New("invalid book file name")
	ErrNotFound        = errors.New("book not found")
	ErrCorrupt         = errors.New("book file is corrupt")
)

// BookInfo describes one stored book file.
type BookInfo struct {
	Name     string    `json:"name"`
	Filename string    `json:"filename"`
	Modified string    `json:"modified"`
	ModTime  time.Time `json:"-"`
}

// Book is a loaded book file.
type Book struct {
	Name     string             `json:"name"`
	Chapters []studyset.Chapter `json:"content"`
}

// BookChapters pairs a book name with its usable chapters.
type BookChapters struct {
	BookName string             `json:"book_name"`
	Chapters []studyset.Chapter `json:"chapters"`
}

// Library is a directory of book files. It is safe for concurrent use;
// writers serialize on a lock file in the directory.
type Library struct {
	dir    string
	logger *slog.Logger
}

// SafeName reduces a book name to a file-name-safe form.
func SafeName(name string) string {
	return textutil.SafeFileName(name)
}

// Open returns the library rooted at dir, creating the directory if needed.
func Open(dir string, logger *slog.Logger) (*Library, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("open library: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Library{dir: dir, logger: logging.NewComponentLogger(logger, "library")}, nil
}

// Dir returns the library directory.
func (l *Library) Dir() string {
	return l.dir
}

// Save stores chapters under the safe form of bookName, replacing any book
// with the same file name, and returns the file name written.
func (l *Library) Save(bookName string, chapters []studyset.Chapter) (string, error) {
	if strings.TrimSpace(bookName) == "" {
		return "", ErrEmptyBookName
	}
	if len(chapters) == 0 {
		return "", ErrNoChapters
	}
	data, err := studyset.EncodeChapters(chapters)
	if err != nil {
		return "", fmt.Errorf("save book: %w", err)
	}
	filename := SafeName(bookName) + bookExt
	path := filepath.Join(l.dir, filename)
	err = fileutil.WithLock(filepath.Join(l.dir, lockFileName), func() error {
		return fileutil.WriteFileAtomic(path, data, 0o644)
	})
	if err != nil {
		return "", fmt.Errorf("save book: %w", err)
	}
	l.logger.Info("book saved",
		logging.String(logging.FieldBook, bookName),
		logging.String("filename", filename),
		logging.Int("chapters", len(chapters)),
	)
	return filename, nil
}

// List returns every book file, newest first.
func (l *Library) List() ([]BookInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books := make([]BookInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isBookFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		books = append(books, BookInfo{
			Name:     strings.TrimSuffix(entry.Name(), bookExt),
			Filename: entry.Name(),
			Modified: info.ModTime().Format(ModifiedLayout),
			ModTime:  info.ModTime(),
		})
	}
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].ModTime.Equal(books[j].ModTime) {
			return books[i].Filename < books[j].Filename
		}
		return books[i].ModTime.After(books[j].ModTime)
	})
	return books, nil
}

// Load reads one book by file name. Only the base name is used.
func (l *Library) Load(filename string) (Book, error) {
	filename = strings.TrimSpace(filename)
	if !isBookFile(filename) {
		return Book{}, fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	base := filepath.Base(filename)
	if !isBookFile(base) {
		return Book{}, fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	data, err := os.ReadFile(filepath.Join(l.dir, base))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Book{}, fmt.Errorf("%w: %s", ErrNotFound, base)
		}
		return Book{}, fmt.Errorf("load book %s: %w", base, err)
	}
	chapters, ok := decodeBook(data)
	if !ok {
		return Book{}, fmt.Errorf("%w: %s", ErrCorrupt, base)
	}
	return Book{Name: strings.TrimSuffix(base, bookExt), Chapters: chapters}, nil
}

// ChaptersFor returns the chapters of the book saved under bookName.
func (l *Library) ChaptersFor(bookName string) ([]studyset.Chapter, error) {
	book, err := l.Load(SafeName(bookName) + bookExt)
	if err != nil {
		return nil, err
	}
	return book.Chapters, nil
}

// All returns every readable book, sorted by file name, with the chapters
// that have both a title and content. Books with no such chapters and files
// that fail to decode are skipped.
func (l *Library) All() ([]BookChapters, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && isBookFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	out := make([]BookChapters, 0, len(names))
	for _, name := range names {
		book, err := l.Load(name)
		if err != nil {
			l.logger.Debug("skipping unreadable book",
				logging.String("filename", name),
				logging.Error(err),
			)
			continue
		}
		valid := make([]studyset.Chapter, 0, len(book.Chapters))
		for _, ch := range book.Chapters {
			if ch.Title != "" && ch.Content != "" {
				valid = append(valid, ch)
			}
		}
		if len(valid) == 0 {
			continue
		}
		out = append(out, BookChapters{BookName: book.Name, Chapters: valid})
	}
	return out, nil
}

func isBookFile(name string) bool {
	return strings.HasSuffix(name, bookExt) && !strings.HasPrefix(name, ".")
}

// decodeBook accepts the chapter-array format and study set documents.
func decodeBook(data []byte) ([]studyset.Chapter, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false
	}
	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, false
		}
		chapters := make([]studyset.Chapter, 0, len(raw))
		for _, item := range raw {
			var ch studyset.Chapter
			if err := json.Unmarshal(item, &ch); err != nil {
				continue
			}
			chapters = append(chapters, ch)
		}
		return chapters, true
	case '{':
		set, ok := studyset.Decode(trimmed)
		if !ok {
			return nil, false
		}
		return set.Chapters, true
	default:
		return nil, false
	}
}
