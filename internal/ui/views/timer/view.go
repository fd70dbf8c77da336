package timer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	timerdto "dsaboost/internal/modules/timer/dto"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/ui/theme"
)

type TimerPort interface {
	Start(ctx context.Context, topicID, topicTitle string, durationSeconds int) (timerdto.Snapshot, error)
	Pause(ctx context.Context) (timerdto.Snapshot, error)
	Resume(ctx context.Context) (timerdto.Snapshot, error)
	Stop(ctx context.Context) (timerdto.Result, error)
	Reset(ctx context.Context) (timerdto.Snapshot, error)
	Problems(ctx context.Context, delta int) (timerdto.Snapshot, error)
	Status(ctx context.Context) (timerdto.RestoreOutput, error)
}

// SnapshotMsg carries a state change published by the timer.
type SnapshotMsg struct {
	Snapshot timerdto.Snapshot
}

type ActionMsg struct {
	Action   string
	Snapshot timerdto.Snapshot
	Err      error
}

type StoppedMsg struct {
	Result timerdto.Result
	Err    error
}

type RestoredMsg struct {
	Out timerdto.RestoreOutput
	Err error
}

type Model struct {
	port            TimerPort
	defaultDuration int
	snap            timerdto.Snapshot
	last            *timerdto.Result
	bar             progress.Model
	status          string
	width           int
	height          int
}

func New(port TimerPort, defaultDuration int) Model {
	bar := progress.New(progress.WithGradient(string(theme.Lavender), string(theme.Peach)), progress.WithoutPercentage())
	return Model{
		port:            port,
		defaultDuration: defaultDuration,
		snap:            timerdto.Snapshot{TimeLeft: defaultDuration, PlannedDurationSeconds: defaultDuration},
		bar:             bar,
	}
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Status(context.Background())
		return RestoredMsg{Out: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(m.width-8, 72))

	case SnapshotMsg:
		m.snap = msg.Snapshot

	case RestoredMsg:
		switch {
		case msg.Err != nil:
			if !errors.Is(msg.Err, apperrors.ErrNoActiveSession) {
				m.status = "restore: " + msg.Err.Error()
			}
		case !msg.Out.Visible:
			m.status = fmt.Sprintf("a session for %s is running elsewhere", msg.Out.Snapshot.TopicTitle)
		default:
			m.snap = msg.Out.Snapshot
			m.status = "session restored from " + msg.Out.Source
		}

	case ActionMsg:
		if msg.Err != nil {
			m.status = msg.Action + ": " + msg.Err.Error()
			return m, nil
		}
		m.snap = msg.Snapshot
		m.status = msg.Action

	case StoppedMsg:
		if msg.Err != nil {
			m.status = "stop: " + msg.Err.Error()
			return m, nil
		}
		result := msg.Result
		m.last = &result
		m.status = fmt.Sprintf("session saved: %d min on %s", result.ActualMinutes, result.TopicTitle)

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "p":
			return m, m.Pause()
		case "x":
			return m, m.stopCmd()
		case "r":
			return m, m.Reset()
		case "+", "=":
			return m, m.problemsCmd(1)
		case "-":
			return m, m.problemsCmd(-1)
		}
	}
	return m, nil
}

// Start begins or resumes a session for a topic chosen elsewhere.
func (m Model) Start(topicID, topicTitle string) tea.Cmd {
	return m.StartWith(topicID, topicTitle, m.defaultDuration)
}

func (m Model) StartWith(topicID, topicTitle string, durationSeconds int) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.port.Start(context.Background(), topicID, topicTitle, durationSeconds)
		return ActionMsg{Action: "started " + topicTitle, Snapshot: snap, Err: err}
	}
}

// Pause toggles between paused and running.
func (m Model) Pause() tea.Cmd {
	if m.snap.IsActive {
		return m.action("paused", m.port.Pause)
	}
	if m.snap.StartTime != nil {
		return m.action("resumed", m.port.Resume)
	}
	return nil
}

func (m Model) Stop() tea.Cmd { return m.stopCmd() }

func (m Model) Reset() tea.Cmd { return m.action("reset", m.port.Reset) }

func (m Model) AddProblems(delta int) tea.Cmd { return m.problemsCmd(delta) }

func (m Model) Snapshot() timerdto.Snapshot { return m.snap }

func (m Model) View() string {
	var sb strings.Builder
	title := "No session"
	if m.snap.TopicTitle != "" {
		title = m.snap.TopicTitle
	}
	sb.WriteString(theme.Title.Render(title) + "\n")

	clockStyle := theme.Clock
	switch {
	case m.snap.TimeLeft < 0:
		clockStyle = theme.Overtime
	case !m.snap.IsActive && m.snap.StartTime != nil:
		clockStyle = theme.Paused
	}
	sb.WriteString(clockStyle.Render(FormatClock(m.snap.TimeLeft)) + "\n")
	sb.WriteString(m.bar.ViewAs(Elapsed(m.snap)) + "\n\n")

	state := "idle"
	switch {
	case m.snap.IsActive && m.snap.TimeLeft < 0:
		state = theme.Bad.Render(fmt.Sprintf("overtime +%d min", m.snap.OvertimeMinutes))
	case m.snap.IsActive:
		state = theme.Good.Render("running")
	case m.snap.StartTime != nil:
		state = theme.Hot.Render("paused")
	}
	sb.WriteString(theme.Muted.Render("state:    ") + state + "\n")
	sb.WriteString(theme.Muted.Render("problems: ") + fmt.Sprintf("%d", m.snap.ProblemsSolved) + "\n")
	sb.WriteString(theme.Muted.Render("planned:  ") + fmt.Sprintf("%d min", (m.snap.PlannedDurationSeconds+59)/60) + "\n")
	if m.last != nil {
		sb.WriteString("\n" + theme.Title.Render("Last session") + "\n")
		sb.WriteString(fmt.Sprintf("%s  %d/%d min  overtime %d  problems %d\n",
			m.last.TopicTitle, m.last.ActualMinutes, m.last.PlannedMinutes, m.last.OvertimeMinutes, m.last.ProblemsSolved))
	}
	if m.status != "" {
		sb.WriteString("\n" + theme.Muted.Render(m.status) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("space: pause/resume  x: stop  r: reset  +/-: problems"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, theme.Pane.Render(sb.String()))
}

// FormatClock renders seconds as mm:ss, prefixed with + once in overtime.
func FormatClock(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "+"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/60, seconds%60)
}

// Elapsed is the completed fraction of the planned duration, capped at 1.
func Elapsed(snap timerdto.Snapshot) float64 {
	if snap.PlannedDurationSeconds <= 0 {
		return 0
	}
	done := float64(snap.PlannedDurationSeconds-snap.TimeLeft) / float64(snap.PlannedDurationSeconds)
	return max(0, min(done, 1))
}

func (m Model) action(name string, fn func(context.Context) (timerdto.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := fn(context.Background())
		return ActionMsg{Action: name, Snapshot: snap, Err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := m.port.Stop(context.Background())
		return StoppedMsg{Result: result, Err: err}
	}
}

func (m Model) problemsCmd(delta int) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.port.Problems(context.Background(), delta)
		return ActionMsg{Action: fmt.Sprintf("problems %+d", delta), Snapshot: snap, Err: err}
	}
}
