package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	activitydto "dsaboost/internal/modules/activity/dto"
	"dsaboost/internal/ui/theme"
)

type ActivityPort interface {
	Show(ctx context.Context) (activitydto.TrackingOutput, error)
	Completed(ctx context.Context) ([]activitydto.CompletedOutput, error)
}

type LoadedMsg struct {
	Current   activitydto.TrackingOutput
	Completed []activitydto.CompletedOutput
	Err       error
}

type Model struct {
	port     ActivityPort
	viewport viewport.Model
	width    int
	height   int
}

func New(port ActivityPort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Foreground(theme.Text).Padding(0, 1)
	return Model{port: port, viewport: vp}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width
		m.viewport.Height = max(1, m.height-2)

	case LoadedMsg:
		if msg.Err != nil {
			m.viewport.SetContent(theme.Bad.Render("activity: " + msg.Err.Error()))
			return m, nil
		}
		m.viewport.SetContent(Render(msg.Current, msg.Completed))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "g" {
			return m, m.Reload()
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), theme.Muted.Render("g: refresh"))
}

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		current, err := m.port.Show(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		completed, err := m.port.Completed(ctx)
		return LoadedMsg{Current: current, Completed: completed, Err: err}
	}
}

// Render lists the running session's pages followed by finished sessions,
// newest first.
func Render(current activitydto.TrackingOutput, completed []activitydto.CompletedOutput) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Current session") + "\n")
	if !current.Tracking {
		sb.WriteString(theme.Muted.Render("  not tracking") + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("  %s since %s\n", current.TopicTitle, current.StartTime.Local().Format("15:04")))
		for _, v := range current.Visits {
			writeVisit(&sb, v)
		}
	}

	sb.WriteString("\n" + theme.Title.Render("Completed sessions") + "\n")
	if len(completed) == 0 {
		sb.WriteString(theme.Muted.Render("  none yet") + "\n")
	}
	for i := len(completed) - 1; i >= 0; i-- {
		c := completed[i]
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", c.StartTime.Local().Format("2006-01-02 15:04"), c.TopicTitle, theme.Hot.Render(c.Total.Round(time.Second).String())))
		for _, v := range c.Visits {
			writeVisit(&sb, v)
		}
	}
	return sb.String()
}

func writeVisit(sb *strings.Builder, v activitydto.VisitOutput) {
	duration := v.Duration.Round(time.Second).String()
	if v.Open {
		duration = theme.Good.Render("open")
	}
	title := v.Title
	if title == "" {
		title = v.URL
	}
	sb.WriteString(fmt.Sprintf("    %s  %-40s %s\n", v.Timestamp.Local().Format("15:04:05"), title, theme.Muted.Render(duration)))
}
