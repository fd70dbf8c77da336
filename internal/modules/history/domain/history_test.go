package domain_test

import (
	"testing"
	"time"

	"dsaboost/internal/modules/history/domain"
)

func TestDailyLogAddAccumulates(t *testing.T) {
	t.Parallel()
	first := domain.DailyLog{Date: "2026-03-02", ProblemsSolved: 2, StudyMinutes: 25, TimerMinutes: 25, Sessions: 1}
	second := domain.DailyLog{Date: "2026-03-02", ProblemsSolved: 3, StudyMinutes: 12, TimerMinutes: 25, Sessions: 1}

	sum := first.Add(second)
	if sum.ProblemsSolved != 5 || sum.StudyMinutes != 37 || sum.TimerMinutes != 50 || sum.Sessions != 2 {
		t.Fatalf("unexpected aggregate: %+v", sum)
	}
}

func TestStreak(t *testing.T) {
	t.Parallel()
	today := time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC)
	logs := []domain.DailyLog{
		{Date: "2026-03-01", StudyMinutes: 10},
		{Date: "2026-03-03", StudyMinutes: 10},
		{Date: "2026-03-04", StudyMinutes: 30},
	}
	if got := domain.Streak(logs, today); got != 2 {
		t.Fatalf("expected streak 2 ending yesterday, got %d", got)
	}

	logs = append(logs, domain.DailyLog{Date: "2026-03-05", StudyMinutes: 5})
	if got := domain.Streak(logs, today); got != 3 {
		t.Fatalf("expected streak 3, got %d", got)
	}

	if got := domain.Streak([]domain.DailyLog{{Date: "2026-03-02", StudyMinutes: 5}}, today); got != 0 {
		t.Fatalf("expected broken streak, got %d", got)
	}
}

func TestWeekRange(t *testing.T) {
	t.Parallel()
	from, to := domain.WeekRange(time.Date(2026, 3, 5, 1, 0, 0, 0, time.UTC))
	if from != "2026-02-27" || to != "2026-03-05" {
		t.Fatalf("unexpected range %s..%s", from, to)
	}
}
