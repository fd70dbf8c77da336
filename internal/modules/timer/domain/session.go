package domain

import (
	"fmt"
	"time"

	"dsaboost/internal/platform/clock"
	apperrors "dsaboost/internal/platform/errors"
)

// Session is the single timer state of a process. A zero StartTime means the
// session never started. TimeLeft goes negative once the planned duration is
// exceeded.
type Session struct {
	IsActive               bool
	TopicID                string
	TopicTitle             string
	StartTime              time.Time
	TimeLeft               int
	PlannedDurationSeconds int
	ProblemsSolved         int

	// Ended is set by the first terminal transition; later ones are rejected.
	Ended bool
}

func NewSession(plannedSeconds int) Session {
	return Session{TimeLeft: plannedSeconds, PlannedDurationSeconds: plannedSeconds}
}

func (s Session) Started() bool {
	return !s.StartTime.IsZero()
}

// Start begins or resumes a run. A paused session for the same topic resumes
// with its original StartTime; anything else starts fresh.
func (s *Session) Start(topicID, topicTitle string, durationSeconds int, now time.Time) (resumed bool, err error) {
	if topicID == "" {
		return false, fmt.Errorf("%w: topic id is required", apperrors.ErrInvalidInput)
	}
	if s.IsActive {
		if s.TopicID != topicID {
			return false, apperrors.ErrAlreadyRunning
		}
		return true, nil
	}
	if s.Started() && !s.Ended && s.TopicID == topicID {
		s.IsActive = true
		return true, nil
	}
	if durationSeconds <= 0 {
		return false, fmt.Errorf("%w: duration must be positive", apperrors.ErrInvalidInput)
	}
	*s = Session{
		IsActive:               true,
		TopicID:                topicID,
		TopicTitle:             topicTitle,
		StartTime:              now,
		TimeLeft:               durationSeconds,
		PlannedDurationSeconds: durationSeconds,
	}
	return false, nil
}

// Tick decrements TimeLeft by one second while active and reports whether
// the countdown just reached zero.
func (s *Session) Tick() bool {
	if !s.IsActive {
		return false
	}
	s.TimeLeft--
	return s.TimeLeft == 0
}

func (s *Session) Pause() error {
	if !s.IsActive {
		return apperrors.ErrNoActiveSession
	}
	s.IsActive = false
	return nil
}

// Reset clears the run and keeps only the planned duration.
func (s *Session) Reset() {
	*s = NewSession(s.PlannedDurationSeconds)
}

func (s *Session) SetProblems(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: problems solved must be non-negative", apperrors.ErrInvalidInput)
	}
	if !s.Started() {
		return apperrors.ErrNoActiveSession
	}
	s.ProblemsSolved = n
	return nil
}

// ClaimTerminal marks the session ended and returns the state it ended in.
// Only the first caller for a started session gets ok == true.
func (s *Session) ClaimTerminal() (Session, bool) {
	if !s.Started() || s.Ended {
		return Session{}, false
	}
	s.Ended = true
	s.IsActive = false
	return *s, true
}

func (s Session) OvertimeMinutes() int {
	if s.TimeLeft >= 0 {
		return 0
	}
	return clock.CeilSecondsToMinutes(-s.TimeLeft)
}

// ElapsedSeconds is the wall-clock time since StartTime, floored to seconds.
func (s Session) ElapsedSeconds(now time.Time) int {
	if !s.Started() || now.Before(s.StartTime) {
		return 0
	}
	return int(now.Sub(s.StartTime) / time.Second)
}
