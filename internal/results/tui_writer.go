package results

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// summaryMsg carries a finished tile pass into the table.
type summaryMsg struct{ TileSummaryRow }

// rowCountMsg updates the total assignment row counter.
type rowCountMsg struct{ n int }

const tuiFooter = "Tiles appear as their assignment pass completes. " +
	"Press q or ctrl+c to quit once the run is done."

var (
	tuiHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	tuiFooterStyle = lipgloss.NewStyle().Faint(true)
	tuiBorderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// TUIWriter renders finished tile passes in a live terminal table.
type TUIWriter struct {
	program teaProgram
	done    chan struct{}
	rows    int
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter() *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		// Quitting the TUI also stops a still-running pass.
		if proc, err := os.FindProcess(os.Getpid()); err == nil {
			_ = proc.Signal(os.Interrupt)
		}
	}()
	return w
}

// Write counts assignment rows; the table itself is driven by summaries.
func (w *TUIWriter) Write(row AssignmentRow) error {
	w.rows++
	w.program.Send(rowCountMsg{n: w.rows})
	return nil
}

// WriteBatch counts a batch of assignment rows.
func (w *TUIWriter) WriteBatch(rows []AssignmentRow) error {
	w.rows += len(rows)
	w.program.Send(rowCountMsg{n: w.rows})
	return nil
}

// WriteSummary adds a finished tile to the table.
func (w *TUIWriter) WriteSummary(s TileSummaryRow) error {
	w.program.Send(summaryMsg{s})
	return nil
}

// Wait blocks until the user quits the TUI.
func (w *TUIWriter) Wait() {
	<-w.done
}

type tuiModel struct {
	table    table.Model
	rowCount int
	width    int
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Tile", Width: 8},
		{Title: "RA", Width: 9},
		{Title: "Dec", Width: 9},
		{Title: "Targets", Width: 8},
		{Title: "Fibers", Width: 8},
		{Title: "Assigned", Width: 9},
		{Title: "Free", Width: 6},
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	return tuiModel{table: t, width: 80}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case summaryMsg:
		rows := append(m.table.Rows(), table.Row{
			fmt.Sprintf("%d", msg.TileID),
			fmt.Sprintf("%.3f", msg.RA),
			fmt.Sprintf("%.3f", msg.Dec),
			fmt.Sprintf("%d", msg.Targets),
			fmt.Sprintf("%d", msg.Fibers),
			fmt.Sprintf("%d", msg.Assigned),
			fmt.Sprintf("%d", msg.FreeFibers),
		})
		m.table.SetRows(rows)
	case rowCountMsg:
		m.rowCount = msg.n
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	header := tuiHeaderStyle.Render(fmt.Sprintf("fibersim: %d tiles, %d assignment rows",
		len(m.table.Rows()), m.rowCount))
	footer := tuiFooterStyle.Render(wordwrap.String(tuiFooter, m.width))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		tuiBorderStyle.Render(m.table.View()),
		footer,
	)
}
