package domain

import (
	"sort"
	"time"
)

const DateLayout = "2006-01-02"

// Entry is an immutable record of one stopped or completed session.
type Entry struct {
	ID                     string
	UserID                 string
	TopicID                string
	TopicTitle             string
	StartTime              time.Time
	EndTime                time.Time
	PlannedDurationSeconds int
	ActualDurationSeconds  int
	PlannedMinutes         int
	ActualMinutes          int
	OvertimeMinutes        int
	ProblemsSolved         int
	CompletedNormally      bool
	NotePath               string
}

// DailyLog is the per-day running total. Stores add a DailyLog onto the
// existing row for (UserID, Date); they never overwrite it.
type DailyLog struct {
	UserID          string
	Date            string
	ProblemsSolved  int
	StudyMinutes    int
	TimerMinutes    int
	OvertimeMinutes int
	Sessions        int
}

func (d DailyLog) Add(other DailyLog) DailyLog {
	d.ProblemsSolved += other.ProblemsSolved
	d.StudyMinutes += other.StudyMinutes
	d.TimerMinutes += other.TimerMinutes
	d.OvertimeMinutes += other.OvertimeMinutes
	d.Sessions += other.Sessions
	return d
}

type Totals struct {
	Sessions          int
	CompletedSessions int
	StudyMinutes      int
	OvertimeMinutes   int
	ProblemsSolved    int
}

// Streak counts consecutive study days ending today. A streak that ended
// yesterday is still alive until today is over.
func Streak(logs []DailyLog, today time.Time) int {
	studied := make(map[string]bool, len(logs))
	for _, log := range logs {
		if log.StudyMinutes > 0 {
			studied[log.Date] = true
		}
	}
	day := dayOf(today)
	if !studied[day.Format(DateLayout)] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for studied[day.Format(DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// WeekRange returns the seven calendar days ending on today, inclusive.
func WeekRange(today time.Time) (string, string) {
	day := dayOf(today)
	return day.AddDate(0, 0, -6).Format(DateLayout), day.Format(DateLayout)
}

func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EndTime.After(entries[j].EndTime)
	})
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
