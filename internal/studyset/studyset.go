package studyset

// Chapter is a titled block of study text.
type Chapter struct {
	Title   string `json:"Title"`
	Content string `json:"Content"`
}

// StudySet is a titled, ordered collection of chapters. Slice order is the
// reading order.
type StudySet struct {
	Title    string    `json:"Title"`
	Chapters []Chapter `json:"Chapters"`
}

// Clone returns a deep copy so callers can hand sets across goroutines by value.
func (s StudySet) Clone() StudySet {
	out := StudySet{Title: s.Title}
	if s.Chapters != nil {
		out.Chapters = make([]Chapter, len(s.Chapters))
		copy(out.Chapters, s.Chapters)
	}
	return out
}

// Len reports the number of chapters.
func (s StudySet) Len() int {
	return len(s.Chapters)
}

// SampleTitle names the built-in sample set.
const SampleTitle = "Test Notes"

// SampleChapters returns the built-in content shown when nothing was loaded.
func SampleChapters() []Chapter {
	return []Chapter{
		{Title: "Chapter 1", Content: "Summary of chapter 1"},
		{Title: "Chapter 2", Content: "Summary of chapter 2"},
	}
}

// Sample returns the built-in sample study set.
func Sample() StudySet {
	return StudySet{Title: SampleTitle, Chapters: SampleChapters()}
}
