package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"recitebot/internal/gateway"
	"recitebot/internal/studyset"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func stub(output string, err error) (gateway.Processor, *atomic.Int32) {
	var calls atomic.Int32
	return gateway.ProcessorFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		return output, err
	}), &calls
}

// process submits text and feeds the finished task back into the model.
func process(t *testing.T, m *Model, text string) {
	t.Helper()
	m.input.SetValue(text)
	if cmd := m.submit(); cmd == nil {
		t.Fatalf("submit returned no command, status %q", m.status)
	}
	if m.stage != stageProcessing {
		t.Fatalf("stage = %v, want processing", m.stage)
	}
	msg := m.awaitTask()()
	m.Update(msg)
}

func titles(m *Model) []string {
	var out []string
	for _, e := range m.editor.Entries() {
		out = append(out, e.Title)
	}
	return out
}

func TestBlankInputIsRejected(t *testing.T) {
	p, calls := stub("[]", nil)
	m := New(context.Background(), Config{Processor: p})
	m.input.SetValue("   \n")
	m.Update(key("ctrl+s"))
	if m.stage != stageInput || !m.failed || m.status == "" {
		t.Fatalf("expected rejection, stage=%v status=%q", m.stage, m.status)
	}
	if calls.Load() != 0 {
		t.Fatal("processor should not be called for blank input")
	}
}

func TestProcessedMessageMovesToStudy(t *testing.T) {
	p, _ := stub(`{"chapters":[{"Title":"Ch1","Content":"Hello world."},{"Title":"Ch2","Content":"More."}]}`, nil)
	m := New(context.Background(), Config{Processor: p})
	process(t, m, "Hello world. More.")

	if m.stage != stageStudy {
		t.Fatalf("stage = %v, want study", m.stage)
	}
	if diff := cmp.Diff([]string{"Ch1", "Ch2"}, titles(m)); diff != "" {
		t.Fatalf("unexpected titles (-want +got):\n%s", diff)
	}
	if m.task != nil {
		t.Fatal("task should be cleared once its result arrives")
	}
	if !strings.Contains(m.View(), "Ch2") {
		t.Fatal("view should list chapters")
	}
}

func TestSubmitIsDisabledWhileProcessing(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	p := gateway.ProcessorFunc(func(ctx context.Context, _ string) (string, error) {
		calls.Add(1)
		<-release
		return `[{"Title":"A","Content":"a"}]`, nil
	})
	m := New(context.Background(), Config{Processor: p})
	m.input.SetValue("text")
	if cmd := m.submit(); cmd == nil {
		t.Fatal("expected first submit to start a task")
	}
	m.Update(key("ctrl+s"))
	if cmd := m.submit(); cmd != nil {
		t.Fatal("second submit should be ignored while a task is outstanding")
	}
	close(release)
	m.Update(m.awaitTask()())
	if calls.Load() != 1 {
		t.Fatalf("processor called %d times", calls.Load())
	}
}

func TestUnparseableOutputShowsSample(t *testing.T) {
	p, _ := stub("sorry, I cannot help", errors.New("exit status 1"))
	m := New(context.Background(), Config{Processor: p})
	process(t, m, "text")
	if m.stage != stageStudy || !m.failed {
		t.Fatalf("stage=%v failed=%v", m.stage, m.failed)
	}
	if diff := cmp.Diff([]string{"Chapter 1", "Chapter 2"}, titles(m)); diff != "" {
		t.Fatalf("expected sample chapters (-want +got):\n%s", diff)
	}
}

func TestFailureWithoutOutputShowsError(t *testing.T) {
	p, _ := stub("", &gateway.ExitError{Code: 2, Stderr: "model unavailable"})
	m := New(context.Background(), Config{Processor: p})
	process(t, m, "text")
	if m.stage != stageInput {
		t.Fatalf("stage = %v, want input", m.stage)
	}
	if !strings.Contains(m.status, "model unavailable") {
		t.Fatalf("status %q should carry the error text", m.status)
	}
}

func TestStderrHiddenWhenOutputUsable(t *testing.T) {
	p, _ := stub(`[{"Title":"A","Content":"a"}]`, &gateway.ExitError{Code: 1, Stderr: "warning: deprecated flag"})
	m := New(context.Background(), Config{Processor: p})
	process(t, m, "text")
	if m.stage != stageStudy || strings.Contains(m.status, "deprecated") {
		t.Fatalf("stage=%v status=%q", m.stage, m.status)
	}
}

func TestDeleteToEmptyThenAdd(t *testing.T) {
	p, _ := stub(`[{"Title":"A","Content":"a"},{"Title":"B","Content":"b"}]`, nil)
	m := New(context.Background(), Config{Processor: p})
	process(t, m, "text")

	m.Update(key("down"))
	m.Update(key("d"))
	if m.cursor != 0 || m.editor.Len() != 1 {
		t.Fatalf("cursor=%d len=%d", m.cursor, m.editor.Len())
	}
	m.Update(key("d"))
	if !m.editor.Empty() {
		t.Fatal("expected empty-state marker")
	}
	if !strings.Contains(m.View(), "No chapters") {
		t.Fatal("view should show the empty-state marker")
	}
	m.Update(key("a"))
	if diff := cmp.Diff([]string{"New Chapter 1"}, titles(m)); diff != "" {
		t.Fatalf("unexpected titles (-want +got):\n%s", diff)
	}
}

func TestEditTitleContentAndBookName(t *testing.T) {
	p, _ := stub(`[{"Title":"A","Content":"a"}]`, nil)
	m := New(context.Background(), Config{Processor: p})
	process(t, m, "text")

	m.Update(key("t"))
	m.field.SetValue("Renamed")
	m.Update(key("enter"))

	m.Update(key("e"))
	m.area.SetValue("new body")
	m.Update(key("ctrl+s"))

	m.Update(key("n"))
	m.field.SetValue("Biology")
	m.Update(key("enter"))

	m.Update(key("t"))
	m.field.SetValue("discarded")
	m.Update(key("esc"))

	snap := m.editor.Snapshot()
	want := []studyset.Chapter{{Title: "Renamed", Content: "new body"}}
	if diff := cmp.Diff(want, snap.Chapters); diff != "" {
		t.Fatalf("unexpected chapters (-want +got):\n%s", diff)
	}
	if snap.BookName != "Biology" {
		t.Fatalf("book name = %q", snap.BookName)
	}
}

func TestWriteSavesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	doc := studyset.NewDocument(path)
	p, _ := stub(`[{"Title":"A","Content":"a"}]`, nil)
	m := New(context.Background(), Config{Processor: p, Document: doc})
	process(t, m, "text")

	_, cmd := m.Update(key("w"))
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	m.Update(cmd())
	if m.failed || !strings.Contains(m.status, path) {
		t.Fatalf("unexpected status %q", m.status)
	}

	reloaded := studyset.NewDocument(path)
	if ok, err := reloaded.Load(); !ok || err != nil {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	want := studyset.StudySet{Title: "Untitled Book", Chapters: []studyset.Chapter{{Title: "A", Content: "a"}}}
	if diff := cmp.Diff(want, reloaded.Current()); diff != "" {
		t.Fatalf("unexpected document (-want +got):\n%s", diff)
	}
}

func TestStartsInStudyWhenDocumentHasChapters(t *testing.T) {
	doc := studyset.NewDocument("", studyset.WithInitial(studyset.Sample()))
	m := New(context.Background(), Config{Document: doc})
	if m.stage != stageStudy || m.editor.Snapshot().BookName != studyset.SampleTitle {
		t.Fatalf("stage=%v book=%q", m.stage, m.editor.Snapshot().BookName)
	}
	m.Update(key("esc"))
	if m.stage != stageInput {
		t.Fatal("esc should return to input")
	}
	if _, cmd := m.Update(key("ctrl+c")); cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
}
