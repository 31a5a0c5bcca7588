package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	mode := "checkbox"
	if m.rowClick {
		mode = "row click"
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		TitleStyle.Render("Catalog selector"),
		"  ",
		ModeStyle.Render("mode: "+mode),
	))
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	b.WriteString(StatusStyle.Render(m.statusLine()))
	b.WriteString("\n")

	switch {
	case m.view.Loading:
		b.WriteString(m.spinner.View() + m.printer.Sprintf(" Loading page %d...", m.view.PageNumber))
	case m.view.Err != nil:
		b.WriteString(ErrorStyle.Render("Failed to load page: " + m.view.Error))
	case m.selecting:
		b.WriteString(m.spinner.View() + " " + m.notice)
	case m.notice != "":
		b.WriteString(NoticeStyle.Render(m.notice))
	}
	b.WriteString("\n")

	if m.prompting {
		b.WriteString(PromptStyle.Render("Select first N rows\n" + m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) statusLine() string {
	pages := m.view.TotalPages
	if pages == 0 {
		pages = 1
	}
	return m.printer.Sprintf("Page %d of %d  |  %d records  |  %d selected (%d on this page)",
		m.view.PageNumber, pages, m.view.TotalRecords, m.view.SelectedCount, len(m.view.Visible))
}
