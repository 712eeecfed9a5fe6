package studyset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"recitebot/internal/fileutil"
	"recitebot/internal/logging"
)

// Document owns the current study set of one front-end and the file it is
// persisted to. It is safe for concurrent use.
type Document struct {
	path   string
	logger *slog.Logger

	mu  sync.RWMutex
	set StudySet
}

// DocumentOption customizes a Document.
type DocumentOption func(*Document)

// WithLogger attaches a logger used for load warnings.
func WithLogger(logger *slog.Logger) DocumentOption {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithInitial seeds the document's in-memory study set.
func WithInitial(set StudySet) DocumentOption {
	return func(d *Document) {
		d.set = set.Clone()
	}
}

// NewDocument returns a handle for the study set stored at path. Nothing is
// read until Load is called; the in-memory set starts empty.
func NewDocument(path string, opts ...DocumentOption) *Document {
	doc := &Document{
		path:   strings.TrimSpace(path),
		logger: logging.NewNop(),
		set:    StudySet{Chapters: []Chapter{}},
	}
	for _, opt := range opts {
		opt(doc)
	}
	doc.logger = logging.NewComponentLogger(doc.logger, "document")
	return doc
}

// Path returns the backing file path.
func (d *Document) Path() string {
	return d.path
}

// Current returns a copy of the current study set.
func (d *Document) Current() StudySet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.set.Clone()
}

// Replace swaps the current study set wholesale.
func (d *Document) Replace(set StudySet) {
	d.mu.Lock()
	d.set = set.Clone()
	d.mu.Unlock()
}

// SetChapters replaces the chapters and keeps the title.
func (d *Document) SetChapters(chapters []Chapter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.set.Chapters = append([]Chapter{}, chapters...)
}

// SetTitle renames the current study set.
func (d *Document) SetTitle(title string) {
	d.mu.Lock()
	d.set.Title = title
	d.mu.Unlock()
}

// Save writes the current study set to the document path as indented JSON.
func (d *Document) Save() error {
	if d.path == "" {
		return errors.New("save document: path is required")
	}
	data, err := Encode(d.Current())
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	err = fileutil.WithLock(d.lockPath(), func() error {
		return fileutil.WriteFileAtomic(d.path, data, 0o644)
	})
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	d.logger.Debug("document saved", logging.String("path", d.path))
	return nil
}

// Load replaces the current study set with the file contents. A missing file
// leaves the current set untouched and reports false without error, as does
// a file that does not decode. Other read failures are returned.
func (d *Document) Load() (bool, error) {
	if d.path == "" {
		return false, nil
	}
	if _, err := os.Stat(d.path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	var data []byte
	err := fileutil.WithLock(d.lockPath(), func() error {
		var readErr error
		data, readErr = os.ReadFile(d.path)
		return readErr
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load document: %w", err)
	}
	set, ok := Decode(data)
	if !ok {
		logging.WarnWithContext(d.logger, "document is not a valid study set", "document_decode",
			logging.String("path", d.path),
			logging.String(logging.FieldImpact, "keeping current study set"),
		)
		return false, nil
	}
	d.Replace(set)
	return true, nil
}

func (d *Document) lockPath() string {
	return d.path + ".lock"
}
