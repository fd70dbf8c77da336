package domain_test

import (
	"errors"
	"testing"
	"time"

	"dsaboost/internal/modules/timer/domain"
	apperrors "dsaboost/internal/platform/errors"
)

var t0 = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

func TestStartThenTicks(t *testing.T) {
	t.Parallel()
	for _, d := range []int{1, 60, 1500} {
		s := domain.NewSession(1500)
		if _, err := s.Start("two-pointers", "Two Pointers", d, t0); err != nil {
			t.Fatalf("start: %v", err)
		}
		for n := 1; n < d; n++ {
			if s.Tick() {
				t.Fatalf("d=%d: tick %d reported zero early", d, n)
			}
		}
		if s.TimeLeft != 1 || !s.IsActive {
			t.Fatalf("d=%d: expected timeLeft 1 and active, got %+v", d, s)
		}
		if !s.Tick() || s.TimeLeft != 0 {
			t.Fatalf("d=%d: last tick should reach zero", d)
		}
	}
}

func TestOvertime(t *testing.T) {
	t.Parallel()
	s := domain.NewSession(0)
	if _, err := s.Start("graphs", "Graphs", 10, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 10+61; i++ {
		s.Tick()
	}
	if s.TimeLeft != -61 {
		t.Fatalf("expected -61, got %d", s.TimeLeft)
	}
	if s.OvertimeMinutes() != 2 {
		t.Fatalf("expected 2 overtime minutes, got %d", s.OvertimeMinutes())
	}
}

func TestStartRejectsOtherTopicWhileActive(t *testing.T) {
	t.Parallel()
	s := domain.NewSession(1500)
	if _, err := s.Start("a", "A", 100, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Start("b", "B", 100, t0); !errors.Is(err, apperrors.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestPauseResumeKeepsStartTime(t *testing.T) {
	t.Parallel()
	s := domain.NewSession(1500)
	if _, err := s.Start("a", "A", 100, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Tick()
	s.Tick()
	if err := s.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	s.Tick()
	if s.TimeLeft != 98 {
		t.Fatalf("paused tick changed timeLeft: %d", s.TimeLeft)
	}
	resumed, err := s.Start("a", "A", 100, t0.Add(time.Hour))
	if err != nil || !resumed {
		t.Fatalf("resume: %v %v", resumed, err)
	}
	if !s.StartTime.Equal(t0) || s.TimeLeft != 98 {
		t.Fatalf("resume should keep start time and time left, got %+v", s)
	}
}

func TestClaimTerminalOnce(t *testing.T) {
	t.Parallel()
	s := domain.NewSession(1500)
	if _, ok := s.ClaimTerminal(); ok {
		t.Fatalf("never started session must not end")
	}
	if _, err := s.Start("a", "A", 100, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	ended, ok := s.ClaimTerminal()
	if !ok || ended.TopicID != "a" || ended.IsActive {
		t.Fatalf("first claim should win, got %+v %v", ended, ok)
	}
	if _, ok := s.ClaimTerminal(); ok {
		t.Fatalf("second claim must lose")
	}
	if _, err := s.Start("a", "A", 100, t0); err != nil {
		t.Fatalf("start after end: %v", err)
	}
	if s.Ended || s.TimeLeft != 100 {
		t.Fatalf("start after end should be fresh, got %+v", s)
	}
}

func TestResetAndProblems(t *testing.T) {
	t.Parallel()
	s := domain.NewSession(1500)
	if err := s.SetProblems(1); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if _, err := s.Start("a", "A", 600, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.SetProblems(-1); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := s.SetProblems(3); err != nil {
		t.Fatalf("set problems: %v", err)
	}
	s.Reset()
	if s.IsActive || s.Started() || s.TimeLeft != 600 || s.ProblemsSolved != 0 || s.TopicID != "" {
		t.Fatalf("unexpected reset state %+v", s)
	}
}

func TestElapsedSeconds(t *testing.T) {
	t.Parallel()
	s := domain.NewSession(1500)
	if s.ElapsedSeconds(t0) != 0 {
		t.Fatalf("unstarted session has no elapsed time")
	}
	_, _ = s.Start("a", "A", 100, t0)
	if got := s.ElapsedSeconds(t0.Add(90*time.Second + 900*time.Millisecond)); got != 90 {
		t.Fatalf("expected 90, got %d", got)
	}
}
