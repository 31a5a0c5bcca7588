package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	// TitleStyle renders the header line.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	// ModeStyle renders the row-click indicator.
	ModeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// StatusStyle renders the totals bar.
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	// ErrorStyle renders load failures.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// NoticeStyle renders transient messages.
	NoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// PromptStyle frames the select-first-N prompt.
	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	// TableHeaderStyle is the table header.
	TableHeaderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				BorderBottom(true).
				Bold(true)

	// TableSelectedStyle is the cursor row.
	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	return s
}
