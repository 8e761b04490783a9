// Package tui renders a live dashboard of the bot's recent cycles.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/esemi/travian-manager/internal/models"
)

// Source provides recent cycle summaries, newest first
type Source interface {
	Recent(limit int) ([]*models.Cycle, error)
}

const (
	historySize     = 50
	refreshInterval = 2 * time.Second
)

type tickMsg time.Time

type cyclesMsg struct {
	cycles []*models.Cycle
	err    error
}

// Model represents the TUI state
type Model struct {
	source  Source
	table   table.Model
	cycles  []*models.Cycle
	err     error
	updated time.Time
}

// New creates a dashboard over source
func New(source Source) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Cycle", Width: 6},
			{Title: "Started", Width: 10},
			{Title: "Took", Width: 8},
			{Title: "Sent", Width: 6},
			{Title: "Added", Width: 6},
			{Title: "Failed", Width: 30},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(panelStyle.GetBorderStyle()).
		BorderForeground(borderSubtleColor).
		BorderBottom(true).
		Foreground(primaryColor)
	s.Selected = selectedStyle
	t.SetStyles(s)

	return Model{source: source, table: t}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

func (m Model) load() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		cycles, err := source.Recent(historySize)
		return cyclesMsg{cycles: cycles, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.load()
		}
	case tea.WindowSizeMsg:
		if h := msg.Height - 12; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.load(), tick())
	case cyclesMsg:
		m.err = msg.err
		if msg.err == nil {
			m.cycles = msg.cycles
			m.table.SetRows(rows(msg.cycles))
			m.updated = time.Now()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func rows(cycles []*models.Cycle) []table.Row {
	out := make([]table.Row, 0, len(cycles))
	for _, c := range cycles {
		took := "-"
		if !c.EndedAt.IsZero() {
			took = c.EndedAt.Sub(c.StartedAt).Round(time.Second).String()
		}
		failed := strings.Join(c.Failed(), ",")
		if failed == "" {
			failed = "-"
		}
		out = append(out, table.Row{
			strconv.Itoa(c.Number),
			c.StartedAt.Format("15:04:05"),
			took,
			strconv.Itoa(c.TotalSent()),
			strconv.Itoa(c.Added),
			failed,
		})
	}
	return out
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Travian bot"))
	if len(m.cycles) > 0 {
		b.WriteString("  " + statusStyle.Render(fmt.Sprintf("last cycle %d", m.cycles[0].Number)))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if len(m.cycles) == 0 {
		b.WriteString(helpStyle.Render("No cycles recorded yet") + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
		if detail := m.detail(); detail != "" {
			b.WriteString(panelStyle.Render(detail) + "\n")
		}
	}

	b.WriteString(helpStyle.Render("↑/↓ select • r refresh • q quit"))
	return b.String()
}

// detail renders the feature breakdown of the selected cycle
func (m Model) detail() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.cycles) {
		return ""
	}
	c := m.cycles[i]

	var lines []string
	lines = append(lines, labelStyle.Render(fmt.Sprintf("Cycle %d", c.Number)))
	for _, f := range c.Features {
		if f.Error != "" {
			lines = append(lines, errorStyle.Render("✗ ")+f.Name+" "+warningStyle.Render(f.Error))
		} else {
			lines = append(lines, statusStyle.Render("✓ ")+f.Name)
		}
	}
	for _, tier := range []models.Tier{models.TierGreenFull, models.TierGreenOther, models.TierOrangeFull, models.TierOrangeOther} {
		if n := c.Sent[tier]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s %d", helpStyle.Render(string(tier)), n))
		}
	}
	return strings.Join(lines, "\n")
}

var startProgram = func(model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// Run starts the dashboard and blocks until the user quits
func Run(source Source) error {
	return startProgram(New(source))
}
