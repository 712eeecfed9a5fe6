package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"recitebot/internal/editor"
	"recitebot/internal/gateway"
	"recitebot/internal/logging"
	"recitebot/internal/studyset"
	"recitebot/internal/textutil"
)

type stage int

const (
	stageInput stage = iota
	stageProcessing
	stageStudy
)

type editTarget int

const (
	editNone editTarget = iota
	editTitle
	editContent
	editBookName
)

// Config wires runtime collaborators into the UI.
type Config struct {
	Processor gateway.Processor
	Document  *studyset.Document
	Logger    *slog.Logger
}

type processedMsg struct {
	outcome gateway.Outcome
}

type savedMsg struct {
	path string
	err  error
}

// Model is the bubbletea model. It owns the editor; workers never touch it
// and report back through messages instead.
type Model struct {
	ctx    context.Context
	cfg    Config
	logger *slog.Logger

	stage   stage
	editing editTarget
	cursor  int
	status  string
	failed  bool
	width   int
	height  int

	editor  *editor.Editor
	task    *gateway.Task
	input   textarea.Model
	field   textinput.Model
	area    textarea.Model
	spinner spinner.Model
	content viewport.Model
}

// New returns a model in the input stage. If the document already holds
// chapters the model starts in the study stage instead.
func New(ctx context.Context, cfg Config) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	input := textarea.New()
	input.Placeholder = "Paste study text here, then press ctrl+s"
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetWidth(80)
	input.SetHeight(12)
	input.Focus()

	field := textinput.New()
	field.CharLimit = 200
	field.Width = 60

	area := textarea.New()
	area.ShowLineNumbers = false
	area.CharLimit = 0
	area.SetWidth(80)
	area.SetHeight(10)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		ctx:     ctx,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "tui"),
		stage:   stageInput,
		editor:  editor.New(),
		input:   input,
		field:   field,
		area:    area,
		spinner: spin,
		content: viewport.New(60, 12),
		width:   100,
		height:  30,
	}
	if cfg.Document != nil {
		if set := cfg.Document.Current(); set.Len() > 0 {
			m.editor.Render(set.Chapters)
			if strings.TrimSpace(set.Title) != "" {
				m.editor.SetBookName(set.Title)
			}
			m.stage = stageStudy
			m.input.Blur()
			m.refreshContent()
		}
	}
	return m
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	m := New(ctx, cfg)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case processedMsg:
		return m, m.handleProcessed(msg.outcome)
	case savedMsg:
		m.handleSaved(msg)
		return m, nil
	case spinner.TickMsg:
		if m.stage != stageProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.stage {
		case stageInput:
			return m, m.updateInput(msg)
		case stageProcessing:
			return m, nil
		case stageStudy:
			if m.editing != editNone {
				return m, m.updateEditing(msg)
			}
			return m, m.updateStudy(msg)
		}
	}

	var cmd tea.Cmd
	switch {
	case m.stage == stageInput:
		m.input, cmd = m.input.Update(msg)
	case m.editing == editContent:
		m.area, cmd = m.area.Update(msg)
	case m.editing != editNone:
		m.field, cmd = m.field.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+s" {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// submit starts one processing task. It does nothing while a task is
// outstanding.
func (m *Model) submit() tea.Cmd {
	if m.task != nil {
		return nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		m.setStatus("enter some text first", true)
		return nil
	}
	if m.cfg.Processor == nil {
		m.setStatus("no text processor configured", true)
		return nil
	}
	m.task = gateway.Go(m.ctx, m.cfg.Processor, text)
	m.stage = stageProcessing
	m.input.Blur()
	m.setStatus("processing...", false)
	m.logger.Info("processing started", logging.Int("chars", len(text)))
	return tea.Batch(m.spinner.Tick, m.awaitTask())
}

func (m *Model) awaitTask() tea.Cmd {
	task := m.task
	ctx := m.ctx
	return func() tea.Msg {
		outcome, err := task.Wait(ctx)
		if err != nil {
			outcome.Err = err
		}
		return processedMsg{outcome: outcome}
	}
}

func (m *Model) handleProcessed(outcome gateway.Outcome) tea.Cmd {
	m.task = nil
	if outcome.Err != nil {
		logging.WarnWithContext(m.logger, "text processing reported an error", "process_failed",
			logging.Error(outcome.Err),
		)
	}
	if strings.TrimSpace(outcome.Output) == "" {
		msg := "processing produced no output"
		if outcome.Err != nil {
			msg = "processing failed: " + textutil.FirstLine(outcome.Err.Error(), 160)
		}
		m.stage = stageInput
		m.setStatus(msg, true)
		return m.input.Focus()
	}

	chapters, err := studyset.ParseChapters([]byte(outcome.Output))
	if err != nil {
		logging.WarnWithContext(m.logger, "could not parse chapters", "process_output_invalid",
			logging.Error(err),
			logging.String(logging.FieldImpact, "showing sample content"),
		)
		chapters = studyset.SampleChapters()
		m.setStatus("could not read chapters from the output; showing sample content", true)
	} else {
		m.setStatus(fmt.Sprintf("%d chapters ready", len(chapters)), false)
	}
	m.editor.Render(chapters)
	m.cursor = 0
	m.stage = stageStudy
	m.refreshContent()
	return nil
}

func (m *Model) updateStudy(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "esc":
		m.stage = stageInput
		m.setStatus("", false)
		return m.input.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.refreshContent()
		}
	case "down", "j":
		if m.cursor < m.editor.Len()-1 {
			m.cursor++
			m.refreshContent()
		}
	case "a":
		m.cursor = m.editor.Add()
		m.setStatus("chapter added", false)
		m.refreshContent()
	case "d":
		if m.editor.Len() == 0 {
			return nil
		}
		if err := m.editor.Delete(m.cursor); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		if m.cursor >= m.editor.Len() && m.cursor > 0 {
			m.cursor--
		}
		m.setStatus("chapter deleted", false)
		m.refreshContent()
	case "t":
		if entry, ok := m.selected(); ok {
			return m.beginEdit(editTitle, entry.Title)
		}
	case "e":
		if entry, ok := m.selected(); ok {
			return m.beginEdit(editContent, entry.Content)
		}
	case "n":
		return m.beginEdit(editBookName, m.editor.BookName())
	case "w":
		return m.save()
	case "pgdown", "pgup":
		var cmd tea.Cmd
		m.content, cmd = m.content.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) beginEdit(target editTarget, value string) tea.Cmd {
	m.editing = target
	if target == editContent {
		m.area.SetValue(value)
		return m.area.Focus()
	}
	m.field.SetValue(value)
	m.field.CursorEnd()
	return m.field.Focus()
}

func (m *Model) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.endEdit()
		m.setStatus("edit canceled", false)
		return nil
	case "enter":
		if m.editing != editContent {
			m.commitEdit(m.field.Value())
			return nil
		}
	case "ctrl+s":
		if m.editing == editContent {
			m.commitEdit(m.area.Value())
			return nil
		}
	}
	var cmd tea.Cmd
	if m.editing == editContent {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.field, cmd = m.field.Update(msg)
	}
	return cmd
}

func (m *Model) commitEdit(value string) {
	var err error
	switch m.editing {
	case editTitle:
		err = m.editor.Edit(m.cursor, editor.FieldTitle, value)
	case editContent:
		err = m.editor.Edit(m.cursor, editor.FieldContent, value)
	case editBookName:
		m.editor.SetBookName(value)
	}
	m.endEdit()
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("updated", false)
	m.refreshContent()
}

func (m *Model) endEdit() {
	m.editing = editNone
	m.field.Blur()
	m.area.Blur()
}

// save copies the editor snapshot into the document and writes it out on a
// command goroutine.
func (m *Model) save() tea.Cmd {
	doc := m.cfg.Document
	if doc == nil {
		m.setStatus("no document file configured", true)
		return nil
	}
	doc.Replace(m.editor.Snapshot().StudySet())
	m.setStatus("saving...", false)
	return func() tea.Msg {
		return savedMsg{path: doc.Path(), err: doc.Save()}
	}
}

func (m *Model) handleSaved(msg savedMsg) {
	if msg.err != nil {
		logging.WarnWithContext(m.logger, "document save failed", "document_save_failed",
			logging.String("path", msg.path),
			logging.Error(msg.err),
		)
		m.setStatus("save failed: "+msg.err.Error(), true)
		return
	}
	m.logger.Info("document saved", logging.String("path", msg.path))
	m.setStatus("saved to "+msg.path, false)
}

func (m *Model) selected() (editor.Entry, bool) {
	entries := m.editor.Entries()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return editor.Entry{}, false
	}
	return entries[m.cursor], true
}

func (m *Model) setStatus(text string, failed bool) {
	m.status = text
	m.failed = failed
}

func (m *Model) refreshContent() {
	entry, ok := m.selected()
	if !ok {
		m.content.SetContent("")
		return
	}
	m.content.SetContent(entry.Content)
	m.content.GotoTop()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	inner := max(width-4, 20)
	m.input.SetWidth(inner)
	m.input.SetHeight(max(height-8, 5))
	m.area.SetWidth(inner)
	m.field.Width = max(inner-10, 10)
	m.content.Width = max(width*2/3-4, 20)
	m.content.Height = max(height-8, 5)
}
