package out_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sessiondto "dsaboost/internal/modules/session/dto"
	timeradapter "dsaboost/internal/modules/timer/adapter/out"
	"dsaboost/internal/modules/timer/dto"
	apperrors "dsaboost/internal/platform/errors"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

type staticIdentity string

func (s staticIdentity) CurrentUserID(context.Context) string { return string(s) }

type fakeMirror struct {
	calls     []string
	updateErr error
	record    sessiondto.Record
	loadErr   error
}

func (f *fakeMirror) DeviceID() string { return "device_test" }

func (f *fakeMirror) StartSession(context.Context, string, sessiondto.State) error {
	f.calls = append(f.calls, "start")
	return nil
}

func (f *fakeMirror) UpdateTimeLeft(context.Context, string, int) (bool, error) {
	f.calls = append(f.calls, "time")
	return f.updateErr == nil, f.updateErr
}

func (f *fakeMirror) UpdateProblems(context.Context, string, int) error {
	f.calls = append(f.calls, "problems")
	return f.updateErr
}

func (f *fakeMirror) Sync(context.Context, string, sessiondto.State) error {
	f.calls = append(f.calls, "sync")
	return nil
}

func (f *fakeMirror) EndSession(context.Context, string) error {
	f.calls = append(f.calls, "end")
	return nil
}

func (f *fakeMirror) Current() (sessiondto.Record, bool) { return f.record, true }

func (f *fakeMirror) Load(context.Context, string) (sessiondto.Record, error) {
	return f.record, f.loadErr
}

func (f *fakeMirror) Subscribe(_ context.Context, _ string, fn func(sessiondto.Record)) error {
	fn(f.record)
	return nil
}

func (f *fakeMirror) SignedOut() {}

func TestMirrorBackendApplyRoutesChanges(t *testing.T) {
	t.Parallel()
	mirror := &fakeMirror{}
	backend := timeradapter.NewMirrorBackend(mirror, staticIdentity("u1"), nil)
	ctx := context.Background()
	active := dto.Snapshot{IsActive: true, TopicID: "arrays", TimeLeft: 100}

	for _, kind := range []dto.ChangeKind{dto.ChangeStarted, dto.ChangeTick, dto.ChangeProblems, dto.ChangePaused, dto.ChangeEnded} {
		if err := backend.Apply(ctx, dto.Change{Kind: kind, Snapshot: active}); err != nil {
			t.Fatalf("apply %s: %v", kind, err)
		}
	}
	want := []string{"start", "time", "problems", "sync", "end"}
	if len(mirror.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", mirror.calls, want)
	}
	for i := range want {
		if mirror.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", mirror.calls, want)
		}
	}
}

func TestMirrorBackendFallsBackToSync(t *testing.T) {
	t.Parallel()
	mirror := &fakeMirror{updateErr: apperrors.ErrNoActiveSession}
	backend := timeradapter.NewMirrorBackend(mirror, staticIdentity("u1"), nil)

	if err := backend.Apply(context.Background(), dto.Change{Kind: dto.ChangeTick, Snapshot: dto.Snapshot{IsActive: true, TopicID: "arrays"}}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(mirror.calls) != 2 || mirror.calls[1] != "sync" {
		t.Fatalf("calls = %v", mirror.calls)
	}
}

func TestMirrorBackendRequiresSignIn(t *testing.T) {
	t.Parallel()
	backend := timeradapter.NewMirrorBackend(&fakeMirror{}, staticIdentity(""), nil)
	if err := backend.Apply(context.Background(), dto.Change{Kind: dto.ChangeStarted}); !errors.Is(err, apperrors.ErrNotSignedIn) {
		t.Fatalf("expected not signed in, got %v", err)
	}
	if _, err := backend.Load(context.Background(), ""); !errors.Is(err, apperrors.ErrNotSignedIn) {
		t.Fatalf("expected not signed in, got %v", err)
	}
}

func TestMirrorBackendLoadRecomputesTimeLeft(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 6, 2, 8, 0, 0, 0, time.UTC)
	mirror := &fakeMirror{record: sessiondto.Record{UserID: "u1", State: sessiondto.State{
		IsActive: true, TopicID: "graphs", TopicTitle: "Graphs", StartTime: &start,
		TimeLeft: 1500, PlannedDurationSeconds: 1500,
	}}}
	backend := timeradapter.NewMirrorBackend(mirror, staticIdentity("u1"), fixedClock{now: start.Add(1600 * time.Second)})

	out, err := backend.Load(context.Background(), "graphs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !out.Visible || out.Snapshot.TimeLeft != -100 || out.Snapshot.OvertimeMinutes != 2 {
		t.Fatalf("unexpected restore %+v", out)
	}

	out, err = backend.Load(context.Background(), "trees")
	if err != nil || out.Visible {
		t.Fatalf("other topic should load hidden: %+v %v", out, err)
	}

	mirror.record = sessiondto.Record{UserID: "u1"}
	if _, err := backend.Load(context.Background(), ""); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("ended row should report no session, got %v", err)
	}
}
