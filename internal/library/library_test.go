package library_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"recitebot/internal/library"
	"recitebot/internal/studyset"
)

func openLibrary(t *testing.T) *library.Library {
	t.Helper()
	lib, err := library.Open(filepath.Join(t.TempDir(), "books"), nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return lib
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"Cell Biology":   "Cell Biology",
		"a/b\\c:d?":      "abcd",
		"history-101_v2": "history-101_v2",
		"  trailing   ":  "  trailing",
		"???":            "unnamed",
		"":               "unnamed",
	}
	for in, want := range tests {
		if got := library.SafeName(in); got != want {
			t.Errorf("SafeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	lib := openLibrary(t)
	chapters := studyset.SampleChapters()

	filename, err := lib.Save("Bio/Notes", chapters)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if filename != "BioNotes.json" {
		t.Fatalf("unexpected filename %q", filename)
	}

	book, err := lib.Load(filename)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := library.Book{Name: "BioNotes", Chapters: chapters}
	if diff := cmp.Diff(want, book); diff != "" {
		t.Fatalf("unexpected book (-want +got):\n%s", diff)
	}

	got, err := lib.ChaptersFor("Bio/Notes")
	if err != nil {
		t.Fatalf("ChaptersFor returned error: %v", err)
	}
	if diff := cmp.Diff(chapters, got); diff != "" {
		t.Fatalf("unexpected chapters (-want +got):\n%s", diff)
	}
}

func TestSaveValidation(t *testing.T) {
	lib := openLibrary(t)
	if _, err := lib.Save("  ", studyset.SampleChapters()); !errors.Is(err, library.ErrEmptyBookName) {
		t.Fatalf("expected ErrEmptyBookName, got %v", err)
	}
	if _, err := lib.Save("Bio", nil); !errors.Is(err, library.ErrNoChapters) {
		t.Fatalf("expected ErrNoChapters, got %v", err)
	}
	books, err := lib.List()
	if err != nil || len(books) != 0 {
		t.Fatalf("expected no books written, got %v %v", books, err)
	}
}

func TestLoadErrors(t *testing.T) {
	lib := openLibrary(t)
	if err := os.WriteFile(filepath.Join(lib.Dir(), "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(filepath.Dir(lib.Dir()), "secret.json")
	if err := os.WriteFile(outside, []byte(`[{"Title":"x","Content":"y"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		filename string
		want     error
	}{
		{"not json extension", "notes.txt", library.ErrInvalidFilename},
		{"missing", "nope.json", library.ErrNotFound},
		{"corrupt", "broken.json", library.ErrCorrupt},
		{"traversal", "../secret.json", library.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := lib.Load(tt.filename); !errors.Is(err, tt.want) {
				t.Fatalf("Load(%q) error = %v, want %v", tt.filename, err, tt.want)
			}
		})
	}
}

func TestLoadAcceptsStudySetDocument(t *testing.T) {
	lib := openLibrary(t)
	data, err := studyset.Encode(studyset.Sample())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(lib.Dir(), "doc.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	book, err := lib.Load("doc.json")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(studyset.SampleChapters(), book.Chapters); diff != "" {
		t.Fatalf("unexpected chapters (-want +got):\n%s", diff)
	}
}

func TestListNewestFirst(t *testing.T) {
	lib := openLibrary(t)
	for _, name := range []string{"Old", "Middle", "New"} {
		if _, err := lib.Save(name, studyset.SampleChapters()); err != nil {
			t.Fatal(err)
		}
	}
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	for i, name := range []string{"Old.json", "Middle.json", "New.json"} {
		stamp := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(filepath.Join(lib.Dir(), name), stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(lib.Dir(), "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	books, err := lib.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	var names []string
	for _, b := range books {
		names = append(names, b.Name)
	}
	if diff := cmp.Diff([]string{"New", "Middle", "Old"}, names); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if books[2].Modified != "2024-03-01 09:30" {
		t.Fatalf("unexpected modified %q", books[2].Modified)
	}
}

func TestAllSkipsInvalid(t *testing.T) {
	lib := openLibrary(t)
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(lib.Dir(), name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.json", `[{"Title":"B1","Content":"b"},{"Title":"","Content":"no title"},"junk"]`)
	write("a.json", `[{"Title":"A1","Content":"a"}]`)
	write("c.json", `[{"Title":"only title"}]`)
	write("d.json", `oops`)

	all, err := lib.All()
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	want := []library.BookChapters{
		{BookName: "a", Chapters: []studyset.Chapter{{Title: "A1", Content: "a"}}},
		{BookName: "b", Chapters: []studyset.Chapter{{Title: "B1", Content: "b"}}},
	}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Fatalf("unexpected books (-want +got):\n%s", diff)
	}
}
