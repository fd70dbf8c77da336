package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	activitydto "dsaboost/internal/modules/activity/dto"
	historydto "dsaboost/internal/modules/history/dto"
	progressdto "dsaboost/internal/modules/progress/dto"
	timerdto "dsaboost/internal/modules/timer/dto"
	"dsaboost/internal/ui/app"
	"dsaboost/internal/ui/components"
)

type fakeTimer struct {
	started  int
	problems []int
}

func (f *fakeTimer) Start(_ context.Context, topicID, title string, seconds int) (timerdto.Snapshot, error) {
	f.started = seconds
	now := time.Now()
	return timerdto.Snapshot{IsActive: true, TopicID: topicID, TopicTitle: title, StartTime: &now, TimeLeft: seconds, PlannedDurationSeconds: seconds}, nil
}
func (f *fakeTimer) Pause(context.Context) (timerdto.Snapshot, error)  { return timerdto.Snapshot{}, nil }
func (f *fakeTimer) Resume(context.Context) (timerdto.Snapshot, error) { return timerdto.Snapshot{}, nil }
func (f *fakeTimer) Stop(context.Context) (timerdto.Result, error)     { return timerdto.Result{}, nil }
func (f *fakeTimer) Reset(context.Context) (timerdto.Snapshot, error)  { return timerdto.Snapshot{}, nil }
func (f *fakeTimer) Problems(_ context.Context, delta int) (timerdto.Snapshot, error) {
	f.problems = append(f.problems, delta)
	return timerdto.Snapshot{}, nil
}
func (f *fakeTimer) Status(context.Context) (timerdto.RestoreOutput, error) {
	return timerdto.RestoreOutput{}, nil
}
func (f *fakeTimer) Watch(context.Context) error { return nil }

type fakeProgress struct{}

func (fakeProgress) Topics(context.Context, string) ([]progressdto.TopicOutput, error) {
	return []progressdto.TopicOutput{{ID: "arrays", Title: "Arrays"}}, nil
}
func (fakeProgress) Mark(_ context.Context, _, topicID string) (progressdto.ProgressOutput, error) {
	return progressdto.ProgressOutput{TopicID: topicID, ProblemsSolved: 1}, nil
}
func (fakeProgress) Stats(context.Context, string) (progressdto.StatsOutput, error) {
	return progressdto.StatsOutput{}, nil
}

type fakeHistory struct{}

func (fakeHistory) List(context.Context, string, int) ([]historydto.EntryOutput, error) { return nil, nil }
func (fakeHistory) Summary(context.Context, string) (historydto.SummaryOutput, error) {
	return historydto.SummaryOutput{}, nil
}

type fakeActivity struct {
	calls []string
}

func (f *fakeActivity) Show(context.Context) (activitydto.TrackingOutput, error) {
	return activitydto.TrackingOutput{}, nil
}
func (f *fakeActivity) Completed(context.Context) ([]activitydto.CompletedOutput, error) {
	return nil, nil
}
func (f *fakeActivity) Visit(_ context.Context, url, _ string) error {
	f.calls = append(f.calls, "visit "+url)
	return nil
}
func (f *fakeActivity) Clear(context.Context, bool) error {
	f.calls = append(f.calls, "clear")
	return nil
}
func (f *fakeActivity) Hidden(context.Context) error {
	f.calls = append(f.calls, "hidden")
	return nil
}
func (f *fakeActivity) Visible(context.Context) error {
	f.calls = append(f.calls, "visible")
	return nil
}

func newModel(timer *fakeTimer, activity *fakeActivity) app.Model {
	return app.NewModel(context.Background(), app.Deps{
		UserID:          "local",
		DefaultDuration: 1500,
		Timer:           timer,
		Progress:        fakeProgress{},
		History:         fakeHistory{},
		Activity:        activity,
	})
}

func update(t *testing.T, m app.Model, msg tea.Msg) (app.Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(app.Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func TestFocusChangesReachActivity(t *testing.T) {
	activity := &fakeActivity{}
	m := newModel(&fakeTimer{}, activity)

	m, cmd := update(t, m, tea.BlurMsg{})
	if cmd == nil {
		t.Fatalf("expected a command on blur")
	}
	cmd()
	_, cmd = update(t, m, tea.FocusMsg{})
	cmd()

	if strings.Join(activity.calls, ",") != "hidden,visible" {
		t.Fatalf("calls = %v", activity.calls)
	}
}

func TestPaletteVisitAndUnknownCommand(t *testing.T) {
	activity := &fakeActivity{}
	m := newModel(&fakeTimer{}, activity)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	_, cmd := update(t, m, components.PaletteSubmitMsg{Input: "visit https://leetcode.com/problems/two-sum Two Sum"})
	if cmd == nil {
		t.Fatalf("expected a visit command")
	}
	cmd()
	if len(activity.calls) != 1 || activity.calls[0] != "visit https://leetcode.com/problems/two-sum" {
		t.Fatalf("calls = %v", activity.calls)
	}

	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "frobnicate"})
	if !strings.Contains(m.View(), "unknown command: frobnicate") {
		t.Fatalf("status missing from view")
	}
}

func TestTimerSnapshotShowsInStatusBar(t *testing.T) {
	m := newModel(&fakeTimer{}, &fakeActivity{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})
	now := time.Now()
	m, _ = update(t, m, app.TimerMsg{Snapshot: timerdto.Snapshot{
		IsActive: true, TopicTitle: "Heaps", StartTime: &now, TimeLeft: 61, PlannedDurationSeconds: 1500,
	}})
	if !strings.Contains(m.View(), "Heaps 01:01") {
		t.Fatalf("status bar missing running session")
	}
}
