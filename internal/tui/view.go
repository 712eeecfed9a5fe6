package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"recitebot/internal/textutil"
)

const (
	inputHelp   = "ctrl+s process • ctrl+c quit"
	studyHelp   = "↑/↓ select • a add • d delete • t title • e content • n book name • w write • esc back • q quit"
	fieldHelp   = "enter save • esc cancel"
	contentHelp = "ctrl+s save • esc cancel"
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("recitebot"))
	b.WriteString("\n\n")

	switch m.stage {
	case stageInput:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		m.writeFooter(&b, inputHelp)
	case stageProcessing:
		fmt.Fprintf(&b, "%s splitting text into chapters...\n\n", m.spinner.View())
		m.writeFooter(&b, "ctrl+c quit")
	case stageStudy:
		b.WriteString(m.studyView())
		b.WriteString("\n")
		m.writeFooter(&b, m.studyHelp())
	}
	return b.String()
}

func (m *Model) studyHelp() string {
	switch m.editing {
	case editNone:
		return studyHelp
	case editContent:
		return contentHelp
	default:
		return fieldHelp
	}
}

func (m *Model) studyView() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Book: %s\n\n", m.editor.Snapshot().BookName)

	if m.editing == editBookName {
		b.WriteString("Book name: " + m.field.View() + "\n")
		return b.String()
	}

	listWidth := max(m.width/3, 20)
	var list strings.Builder
	if m.editor.Empty() {
		list.WriteString(emptyStyle.Render("No chapters. Press a to add one."))
	}
	for i, entry := range m.editor.Entries() {
		title := textutil.FirstLine(entry.Title, listWidth-6)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", entry.Index+1)
		}
		line := fmt.Sprintf("%2d. %s", entry.Index+1, title)
		if i == m.cursor {
			list.WriteString(selectedStyle.Render(line))
		} else {
			list.WriteString(itemStyle.Render(line))
		}
		list.WriteString("\n")
	}

	var detail string
	switch m.editing {
	case editTitle:
		detail = "Title: " + m.field.View()
	case editContent:
		detail = m.area.View()
	default:
		detail = m.content.View()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(listWidth).Render(strings.TrimRight(list.String(), "\n")),
		paneStyle.Render(detail),
	)
}

func (m *Model) writeFooter(b *strings.Builder, help string) {
	if m.status != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(help))
}
