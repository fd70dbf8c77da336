package topics

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	progressdto "dsaboost/internal/modules/progress/dto"
	"dsaboost/internal/ui/theme"
)

type ProgressPort interface {
	Topics(ctx context.Context, userID string) ([]progressdto.TopicOutput, error)
	Mark(ctx context.Context, userID, topicID string) (progressdto.ProgressOutput, error)
	Stats(ctx context.Context, userID string) (progressdto.StatsOutput, error)
}

type TopicsLoadedMsg struct {
	Topics []progressdto.TopicOutput
	Stats  progressdto.StatsOutput
	Err    error
}

// MarkedMsg reports a solved problem; the app also bumps the timer counter.
type MarkedMsg struct {
	TopicID  string
	Progress progressdto.ProgressOutput
	Err      error
}

type topicItem struct {
	topic progressdto.TopicOutput
}

func (i topicItem) Title() string {
	mark := "  "
	if i.topic.Progress.Completed {
		mark = "✓ "
	}
	return mark + i.topic.Title
}

func (i topicItem) Description() string {
	return fmt.Sprintf("%s · %s · %d%%", i.topic.Category, i.topic.Difficulty, i.topic.Progress.MasteryLevel)
}

func (i topicItem) FilterValue() string { return i.topic.Title + " " + i.topic.Category }

type Model struct {
	port    ProgressPort
	userID  string
	list    list.Model
	stats   progressdto.StatsOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port ProgressPort, userID string) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Topics"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		userID:  userID,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case TopicsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Topics: " + msg.Err.Error()
			return m, nil
		}
		m.stats = msg.Stats
		items := make([]list.Item, len(msg.Topics))
		for i, t := range msg.Topics {
			items[i] = topicItem{topic: t}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case MarkedMsg:
		if msg.Err == nil {
			cmds = append(cmds, m.Reload())
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading topics…")
	}

	listW := m.width * 5 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) Selected() (progressdto.TopicOutput, bool) {
	if item, ok := m.list.SelectedItem().(topicItem); ok {
		return item.topic, true
	}
	return progressdto.TopicOutput{}, false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		topics, err := m.port.Topics(ctx, m.userID)
		if err != nil {
			return TopicsLoadedMsg{Err: err}
		}
		stats, err := m.port.Stats(ctx, m.userID)
		return TopicsLoadedMsg{Topics: topics, Stats: stats, Err: err}
	}
}

func (m Model) MarkSelected() tea.Cmd {
	topic, ok := m.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		out, err := m.port.Mark(context.Background(), m.userID, topic.ID)
		return MarkedMsg{TopicID: topic.ID, Progress: out, Err: err}
	}
}

func (m *Model) resize() {
	listW := m.width * 5 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	var sb strings.Builder
	if t, ok := m.Selected(); ok {
		p := t.Progress
		sb.WriteString(theme.Title.Render(t.Title) + "\n\n")
		sb.WriteString(theme.Muted.Render("category:   ") + t.Category + "\n")
		sb.WriteString(theme.Muted.Render("difficulty: ") + theme.Difficulty(t.Difficulty).Render(t.Difficulty) + "\n")
		sb.WriteString(theme.Muted.Render("estimate:   ") + t.EstimatedTime + "\n")
		sb.WriteString(theme.Muted.Render("problems:   ") + fmt.Sprintf("%d / %d", p.ProblemsSolved, t.ProblemsCount) + "\n")
		mastery := fmt.Sprintf("%d%%", p.MasteryLevel)
		if p.Completed {
			mastery = theme.Good.Render(mastery + " mastered")
		}
		sb.WriteString(theme.Muted.Render("mastery:    ") + mastery + "\n")
		sb.WriteString(theme.Muted.Render("studied:    ") + fmt.Sprintf("%d min", p.StudyMinutes) + "\n")
		if !p.LastStudied.IsZero() {
			sb.WriteString(theme.Muted.Render("last:       ") + p.LastStudied.Local().Format("2006-01-02 15:04") + "\n")
		}
	} else {
		sb.WriteString(theme.Muted.Render("Select a topic to see progress") + "\n")
	}
	s := m.stats
	sb.WriteString("\n" + theme.Title.Render("Overall") + "\n")
	sb.WriteString(fmt.Sprintf("%d problems · %d mastered · %d min\n", s.TotalProblems, s.TopicsMastered, s.TotalStudyTime))
	sb.WriteString(fmt.Sprintf("this week: %d problems · %d min\n", s.Weekly.ProblemsCompleted, s.Weekly.StudyTimeCompleted))
	sb.WriteString("\n" + theme.Muted.Render("s: start timer  m: mark solved  /: filter"))
	return sb.String()
}
