// Package tui is a terminal table for browsing the catalog and building a
// selection, including select-first-N across pages.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/catalog-selector/pkg/catalog"
	"github.com/Sternrassler/catalog-selector/pkg/coordinator"
	"github.com/Sternrassler/catalog-selector/pkg/logging"
	"github.com/Sternrassler/catalog-selector/pkg/selection"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultWidth  = 120
	defaultHeight = 24

	// chromeHeight is every line View draws besides the table: title and
	// spacer (2), status (1), loading/notice (1), framed prompt (4), help (1).
	chromeHeight = 9

	// minTableHeight keeps the header (2) and one row.
	minTableHeight = 3

	// Table column widths.
	colWidthCheck  = 3
	colWidthID     = 8
	colWidthTitle  = 40
	colWidthDate   = 11
	colWidthArtist = 30
	colWidthOrigin = 16

	promptCharLimit = 7
)

// pageLoadedMsg reports a finished GoToPage.
type pageLoadedMsg struct {
	page int
	err  error
}

// selectDoneMsg reports a finished select-first-N run.
type selectDoneMsg struct {
	result selection.Result
}

// Model is the Bubble Tea model of the catalog browser.
type Model struct {
	ctx      context.Context
	coord    *coordinator.Coordinator
	store    *selection.Store
	selector *selection.Selector
	logger   zerolog.Logger

	keys    KeyMap
	help    help.Model
	table   table.Model
	spinner spinner.Model
	input   textinput.Model
	printer *message.Printer

	view      coordinator.View
	pending   int
	selecting bool
	prompting bool
	rowClick  bool
	notice    string
	width     int
	height    int
	quitting  bool
}

// New creates the browser model. Nothing is fetched until Init.
func New(ctx context.Context, coord *coordinator.Coordinator, store *selection.Store, selector *selection.Selector) *Model {
	input := textinput.New()
	input.Placeholder = "rows to select"
	input.CharLimit = promptCharLimit
	input.Width = 20

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:      ctx,
		coord:    coord,
		store:    store,
		selector: selector,
		logger:   logging.NewLogger("tui"),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		input:    input,
		printer:  message.NewPrinter(language.English),
		width:    defaultWidth,
		height:   defaultHeight,
		table: table.New(
			table.WithColumns(columns()),
			table.WithFocused(true),
			table.WithHeight(defaultHeight-chromeHeight),
			table.WithStyles(tableStyles()),
		),
	}
	m.view = coord.View()
	return m
}

func columns() []table.Column {
	return []table.Column{
		{Title: "", Width: colWidthCheck},
		{Title: "ID", Width: colWidthID},
		{Title: "Title", Width: colWidthTitle},
		{Title: "Date", Width: colWidthDate},
		{Title: "Artist", Width: colWidthArtist},
		{Title: "Origin", Width: colWidthOrigin},
	}
}

// Init starts the spinner and loads the first page.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadPage(1))
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(minTableHeight, msg.Height-chromeHeight))
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		m.pending = max(0, m.pending-1)
		if msg.err != nil {
			m.logger.Debug().Err(msg.err).Int("page", msg.page).Msg("Page load finished with error")
		}
		m.refresh()
		return m, nil

	case selectDoneMsg:
		m.selecting = false
		m.notice = m.describeResult(msg.result)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.handlePromptKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.toggleCursor()
		return m, nil

	case key.Matches(msg, m.keys.RowClick):
		if m.rowClick {
			m.toggleCursor()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleMode):
		m.rowClick = !m.rowClick
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if m.hasNextPage() {
			return m, m.loadPage(m.view.PageNumber + 1)
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.view.PageNumber > 1 {
			return m, m.loadPage(m.view.PageNumber - 1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.loadPage(m.view.PageNumber)

	case key.Matches(msg, m.keys.SelectFirst):
		if m.selecting || m.selector.Running() {
			m.notice = "A select-first run is already in progress"
			return m, nil
		}
		m.prompting = true
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Clear):
		m.store.Clear()
		m.notice = "Selection cleared"
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		n, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil || n < 0 {
			m.notice = "Enter a non-negative number"
			return m, nil
		}
		m.closePrompt()
		m.selecting = true
		m.notice = m.printer.Sprintf("Selecting the first %d rows...", n)
		return m, m.selectFirst(n)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) loadPage(n int) tea.Cmd {
	m.pending++
	m.view.PageNumber = n
	m.view.Loading = true
	ctx, coord := m.ctx, m.coord
	return func() tea.Msg {
		return pageLoadedMsg{page: n, err: coord.GoToPage(ctx, n)}
	}
}

func (m *Model) selectFirst(n int) tea.Cmd {
	ctx, selector := m.ctx, m.selector
	return func() tea.Msg {
		return selectDoneMsg{result: selector.SelectFirstN(ctx, n)}
	}
}

func (m *Model) toggleCursor() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.view.Records) {
		return
	}
	m.coord.ToggleRecord(m.view.Records[idx].ID)
	m.refresh()
}

func (m *Model) hasNextPage() bool {
	if m.view.TotalPages > 0 {
		return m.view.PageNumber < m.view.TotalPages
	}
	return len(m.view.Records) > 0
}

// refresh pulls a fresh view and rebuilds the rows, keeping the cursor.
func (m *Model) refresh() {
	m.view = m.coord.View()
	if m.pending > 0 {
		m.view.Loading = true
	}

	cursor := m.table.Cursor()
	rows := make([]table.Row, len(m.view.Records))
	for i, r := range m.view.Records {
		rows[i] = m.row(r)
	}
	m.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	m.table.SetCursor(max(cursor, 0))
}

func (m *Model) row(r catalog.Record) table.Row {
	check := "[ ]"
	if m.store.Contains(r.ID) {
		check = "[x]"
	}
	return table.Row{
		check,
		strconv.FormatInt(r.ID, 10),
		r.Title,
		formatDates(r.DateStart, r.DateEnd),
		firstLine(r.ArtistDisplay),
		r.PlaceOfOrigin,
	}
}

func (m *Model) describeResult(r selection.Result) string {
	switch r.Reason {
	case selection.StopNoop:
		return m.printer.Sprintf("Already %d selected, nothing to do", m.store.Count())
	case selection.StopFetchFailed:
		return m.printer.Sprintf("Added %d rows before a page failed to load", r.Added)
	case selection.StopExhausted, selection.StopPageCap:
		return m.printer.Sprintf("Added %d rows; no more records available", r.Added)
	default:
		return m.printer.Sprintf("Added %d rows from %d pages", r.Added, r.PagesFetched)
	}
}

func formatDates(start, end *int) string {
	switch {
	case start == nil && end == nil:
		return ""
	case start == nil:
		return strconv.Itoa(*end)
	case end == nil || *end == *start:
		return strconv.Itoa(*start)
	default:
		return fmt.Sprintf("%d-%d", *start, *end)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, coord *coordinator.Coordinator, store *selection.Store, selector *selection.Selector) error {
	m := New(ctx, coord, store, selector)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	m.logger.Info().Int("selected", store.Count()).Msg("Browser closed")
	return nil
}
