package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"recitebot/internal/library"
	"recitebot/internal/studyset"
)

// WriteBook stores chapters as a book file in dir and returns its path.
func WriteBook(t testing.TB, dir, bookName string, chapters []studyset.Chapter) string {
	t.Helper()

	data, err := studyset.EncodeChapters(chapters)
	if err != nil {
		t.Fatalf("encode book %s: %v", bookName, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, library.SafeName(bookName)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
