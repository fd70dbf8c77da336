package dto

import "time"

type SessionEndedInput struct {
	// UserID is empty when nobody is signed in; only desktop notices apply.
	UserID          string
	Completed       bool
	TopicID         string
	TopicTitle      string
	ActualMinutes   int
	PlannedMinutes  int
	OvertimeMinutes int
	ProblemsSolved  int
}

type WelcomeInput struct {
	UserID string
	Email  string
	Name   string
}

type Recipient struct {
	Email              string
	Name               string
	EmailNotifications bool
}

type TimerEmail struct {
	To              string
	Name            string
	DurationMinutes int
	ProblemsSolved  int
	TopicTitle      string
	OvertimeMinutes int
}

type DailySummaryInput struct {
	UserID         string
	Date           time.Time
	ProblemsSolved int
	StudyMinutes   int
	TopicsStudied  []string
	Streak         int
}

type SummaryEmail struct {
	To             string
	Name           string
	Date           time.Time
	ProblemsSolved int
	StudyMinutes   int
	TopicsStudied  []string
	Streak         int
}
