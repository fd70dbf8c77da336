package dto

import "time"

type RecordInput struct {
	UserID                 string
	TopicID                string
	TopicTitle             string
	StartTime              time.Time
	EndTime                time.Time
	PlannedDurationSeconds int
	ProblemsSolved         int
	Completed              bool
}

type RecordOutput struct {
	Recorded        bool
	EntryID         string
	ActualMinutes   int
	PlannedMinutes  int
	OvertimeMinutes int
	NotePath        string
}

type EntryOutput struct {
	ID                     string    `json:"id"`
	TopicID                string    `json:"topicId"`
	TopicTitle             string    `json:"topicTitle"`
	StartTime              time.Time `json:"startTime"`
	EndTime                time.Time `json:"endTime"`
	PlannedDurationSeconds int       `json:"plannedDuration"`
	ActualDurationSeconds  int       `json:"actualDuration"`
	ActualMinutes          int       `json:"actualMinutes"`
	OvertimeMinutes        int       `json:"overtimeMinutes"`
	ProblemsSolved         int       `json:"problemsSolved"`
	CompletedNormally      bool      `json:"completedNormally"`
	NotePath               string    `json:"notePath,omitempty"`
}

type DailyLogOutput struct {
	Date            string `json:"date"`
	ProblemsSolved  int    `json:"problemsSolved"`
	StudyMinutes    int    `json:"studyTimeMinutes"`
	TimerMinutes    int    `json:"timerDurationMinutes"`
	OvertimeMinutes int    `json:"overtimeMinutes"`
	Sessions        int    `json:"sessions"`
}

type SummaryOutput struct {
	Sessions          int `json:"sessions"`
	CompletedSessions int `json:"completedSessions"`
	StudyMinutes      int `json:"studyMinutes"`
	OvertimeMinutes   int `json:"overtimeMinutes"`
	ProblemsSolved    int `json:"problemsSolved"`
	WeeklyMinutes     int `json:"weeklyMinutes"`
	WeeklyProblems    int `json:"weeklyProblems"`
	StreakDays        int `json:"streakDays"`
}
