package history

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	historydto "dsaboost/internal/modules/history/dto"
	"dsaboost/internal/ui/theme"
)

const listLimit = 100

type HistoryPort interface {
	List(ctx context.Context, userID string, limit int) ([]historydto.EntryOutput, error)
	Summary(ctx context.Context, userID string) (historydto.SummaryOutput, error)
}

type LoadedMsg struct {
	Entries []historydto.EntryOutput
	Summary historydto.SummaryOutput
	Err     error
}

type Model struct {
	port    HistoryPort
	userID  string
	table   table.Model
	summary historydto.SummaryOutput
	err     error
	width   int
	height  int
}

func New(port HistoryPort, userID string) Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Surface1).
		BorderBottom(true).
		Foreground(theme.Sapphire).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(theme.Base).Background(theme.Lavender)
	t.SetStyles(styles)
	return Model{port: port, userID: userID, table: t}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Topic", Width: 28},
		{Title: "Min", Width: 5},
		{Title: "Plan", Width: 5},
		{Title: "Over", Width: 5},
		{Title: "Solved", Width: 7},
		{Title: "Done", Width: 5},
	}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(m.width)
		m.table.SetHeight(max(3, m.height-6))

	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.summary = msg.Summary
		m.table.SetRows(Rows(msg.Entries))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "g" {
			return m, m.Reload()
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	s := m.summary
	header := theme.Title.Render("History") + "  " + theme.Muted.Render(fmt.Sprintf(
		"%d sessions (%d completed) · %d min · %d overtime · %d solved · week %d min / %d solved · streak %d",
		s.Sessions, s.CompletedSessions, s.StudyMinutes, s.OvertimeMinutes, s.ProblemsSolved,
		s.WeeklyMinutes, s.WeeklyProblems, s.StreakDays))
	if m.err != nil {
		header = theme.Bad.Render("history: " + m.err.Error())
	}
	footer := theme.Muted.Render("↑/↓: scroll  g: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.table.View(), "", footer)
}

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := m.port.List(ctx, m.userID, listLimit)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		summary, err := m.port.Summary(ctx, m.userID)
		return LoadedMsg{Entries: entries, Summary: summary, Err: err}
	}
}

// Rows renders entries newest first, as returned by the store.
func Rows(entries []historydto.EntryOutput) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		done := ""
		if e.CompletedNormally {
			done = "✓"
		}
		rows = append(rows, table.Row{
			e.StartTime.Local().Format("2006-01-02 15:04"),
			e.TopicTitle,
			strconv.Itoa(e.ActualMinutes),
			strconv.Itoa((e.PlannedDurationSeconds + 59) / 60),
			strconv.Itoa(e.OvertimeMinutes),
			strconv.Itoa(e.ProblemsSolved),
			done,
		})
	}
	return rows
}
