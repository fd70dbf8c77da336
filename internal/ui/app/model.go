package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	timerdto "dsaboost/internal/modules/timer/dto"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/ui/components"
	"dsaboost/internal/ui/theme"
	activityview "dsaboost/internal/ui/views/activity"
	historyview "dsaboost/internal/ui/views/history"
	timerview "dsaboost/internal/ui/views/timer"
	topicsview "dsaboost/internal/ui/views/topics"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Sub-view ports are defined in their own packages; these widen them with
// what the orchestration layer needs on top.

type TimerPort interface {
	timerview.TimerPort
	Watch(ctx context.Context) error
}

type ActivityPort interface {
	activityview.ActivityPort
	Visit(ctx context.Context, url, title string) error
	Clear(ctx context.Context, completed bool) error
	Hidden(ctx context.Context) error
	Visible(ctx context.Context) error
}

type Deps struct {
	UserID string
	// DefaultDuration is in seconds.
	DefaultDuration int
	Timer           TimerPort
	Progress        topicsview.ProgressPort
	History         historyview.HistoryPort
	Activity        ActivityPort
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimer tabID = iota
	tabTopics
	tabHistory
	tabActivity
	tabCount
)

var tabLabels = [tabCount]string{
	"Timer", "Topics", "History", "Activity",
}

// ─── async messages ───────────────────────────────────────────────────────────

// TimerMsg carries a snapshot published by the timer outside of a key press,
// such as a tick or a change mirrored from another device.
type TimerMsg struct {
	Snapshot timerdto.Snapshot
}

type watchStartedMsg struct{ err error }

type activityDoneMsg struct {
	action string
	err    error
}

// refreshMsg reloads the data tabs after a session ends.
type refreshMsg struct{}

const refreshDelay = time.Second

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Start    key.Binding
	Mark     key.Binding
	Pause    key.Binding
	Stop     key.Binding
	Problems key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "study topic")),
		Mark:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark problem solved")),
		Pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		Stop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Problems: key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "problems")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Start, k.Mark},
		{k.Pause, k.Stop, k.Problems},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette; the timer itself lives behind the Timer port.
type Model struct {
	ctx  context.Context
	deps Deps

	timerView    timerview.Model
	topicsView   topicsview.Model
	historyView  historyview.Model
	activityView activityview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel builds the root model. ctx bounds the remote watches started from
// Init.
func NewModel(ctx context.Context, deps Deps) Model {
	return Model{
		ctx:          ctx,
		deps:         deps,
		timerView:    timerview.New(deps.Timer, deps.DefaultDuration),
		topicsView:   topicsview.New(deps.Progress, deps.UserID),
		historyView:  historyview.New(deps.History, deps.UserID),
		activityView: activityview.New(deps.Activity),
		activeTab:    tabTimer,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.timerView.Init(),
		m.topicsView.Init(),
		m.historyView.Init(),
		m.activityView.Init(),
		m.watchCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case tea.FocusMsg:
		return m, m.activityCmd("visible", m.deps.Activity.Visible)

	case tea.BlurMsg:
		return m, m.activityCmd("hidden", m.deps.Activity.Hidden)

	case watchStartedMsg:
		if msg.err != nil && !errors.Is(msg.err, apperrors.ErrNotConfigured) {
			m.status = "watch: " + msg.err.Error()
		}
		return m, nil

	case activityDoneMsg:
		if msg.err != nil {
			m.status = msg.action + ": " + msg.err.Error()
			return m, nil
		}
		if msg.action == "visit" || msg.action == "clear" {
			m.status = msg.action + " recorded"
			return m, m.activityView.Reload()
		}
		return m, nil

	case refreshMsg:
		return m, tea.Batch(m.topicsView.Reload(), m.historyView.Reload(), m.activityView.Reload())

	// Timer messages go to the timer view whichever tab is shown.
	case TimerMsg:
		ended := m.timerView.Snapshot().StartTime != nil && msg.Snapshot.StartTime == nil
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(timerview.SnapshotMsg{Snapshot: msg.Snapshot})
		if ended {
			cmd = tea.Batch(cmd, refreshLater())
		}
		return m, cmd

	case timerview.ActionMsg, timerview.RestoredMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		if a, ok := msg.(timerview.ActionMsg); ok {
			m.setTimerStatus(a.Action, a.Err)
		}
		return m, cmd

	case timerview.StoppedMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		if msg.Err != nil {
			m.status = "stop: " + msg.Err.Error()
			return m, cmd
		}
		m.status = fmt.Sprintf("saved %d min on %s", msg.Result.ActualMinutes, msg.Result.TopicTitle)
		return m, tea.Batch(cmd, refreshLater())

	case topicsview.TopicsLoadedMsg:
		var cmd tea.Cmd
		m.topicsView, cmd = m.topicsView.Update(msg)
		return m, cmd

	case topicsview.MarkedMsg:
		var cmd tea.Cmd
		m.topicsView, cmd = m.topicsView.Update(msg)
		if msg.Err != nil {
			m.status = "mark: " + msg.Err.Error()
			return m, cmd
		}
		m.status = fmt.Sprintf("%s: %d solved, mastery %d%%", msg.TopicID, msg.Progress.ProblemsSolved, msg.Progress.MasteryLevel)
		snap := m.timerView.Snapshot()
		if snap.StartTime != nil && snap.TopicID == msg.TopicID {
			cmd = tea.Batch(cmd, m.timerView.AddProblems(1))
		}
		return m, cmd

	case historyview.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case activityview.LoadedMsg:
		var cmd tea.Cmd
		m.activityView, cmd = m.activityView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the topic list while its filter is open.
		if m.activeTab == tabTopics && m.topicsView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "s":
			if m.activeTab == tabTopics {
				if topic, ok := m.topicsView.Selected(); ok {
					m.activeTab = tabTimer
					return m, m.timerView.Start(topic.ID, topic.Title)
				}
			}
		case "m":
			if m.activeTab == tabTopics {
				return m, m.topicsView.MarkSelected()
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimer:
		m.timerView, tabCmd = m.timerView.Update(msg)
	case tabTopics:
		m.topicsView, tabCmd = m.topicsView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	case tabActivity:
		m.activityView, tabCmd = m.activityView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(1, m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTimer:
		return m.timerView.View()
	case tabTopics:
		return m.topicsView.View()
	case tabHistory:
		return m.historyView.View()
	case tabActivity:
		return m.activityView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "dsaboost  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if snap := m.timerView.Snapshot(); snap.StartTime != nil {
		left = theme.Hot.Render("● "+snap.TopicTitle+" "+timerview.FormatClock(snap.TimeLeft)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "timer:start":
		topic, ok := m.topicsView.Selected()
		if !ok {
			m.status = "no topic selected"
			return m, nil
		}
		duration := m.deps.DefaultDuration
		if len(parts) >= 2 {
			minutes, err := strconv.Atoi(parts[1])
			if err != nil || minutes <= 0 {
				m.status = "usage: timer:start [minutes]"
				return m, nil
			}
			duration = minutes * 60
		}
		m.activeTab = tabTimer
		return m, m.timerView.StartWith(topic.ID, topic.Title, duration)

	case "timer:pause":
		return m, m.timerCmd("paused", m.deps.Timer.Pause)

	case "timer:resume":
		return m, m.timerCmd("resumed", m.deps.Timer.Resume)

	case "timer:stop":
		return m, m.timerView.Stop()

	case "timer:reset":
		return m, m.timerView.Reset()

	case "problems":
		if len(parts) < 2 {
			m.status = "usage: problems <delta>"
			return m, nil
		}
		delta, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid delta"
			return m, nil
		}
		return m, m.timerView.AddProblems(delta)

	case "topic:mark":
		return m, m.topicsView.MarkSelected()

	case "visit":
		if len(parts) < 2 {
			m.status = "usage: visit <url> [title]"
			return m, nil
		}
		url := parts[1]
		title := strings.TrimSpace(strings.TrimPrefix(input, parts[0]+" "+parts[1]))
		return m, m.activityCmd("visit", func(ctx context.Context) error {
			return m.deps.Activity.Visit(ctx, url, title)
		})

	case "activity:clear":
		return m, m.activityCmd("clear", func(ctx context.Context) error {
			return m.deps.Activity.Clear(ctx, true)
		})

	case "history:refresh":
		m.activeTab = tabHistory
		return m, m.historyView.Reload()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.timerView, _ = m.timerView.Update(sz)
	m.topicsView, _ = m.topicsView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
	m.activityView, _ = m.activityView.Update(sz)
}

func (m *Model) setTimerStatus(action string, err error) {
	if err != nil {
		m.status = action + ": " + err.Error()
		return
	}
	m.status = action
}

func refreshLater() tea.Cmd {
	return tea.Tick(refreshDelay, func(time.Time) tea.Msg { return refreshMsg{} })
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) watchCmd() tea.Cmd {
	return func() tea.Msg {
		return watchStartedMsg{err: m.deps.Timer.Watch(m.ctx)}
	}
}

func (m Model) timerCmd(action string, fn func(context.Context) (timerdto.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := fn(context.Background())
		return timerview.ActionMsg{Action: action, Snapshot: snap, Err: err}
	}
}

func (m Model) activityCmd(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return activityDoneMsg{action: action, err: fn(context.Background())}
	}
}
