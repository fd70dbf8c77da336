package dto

import "time"

type WelcomeData struct {
	To       string
	UserName string
}

type TimerCompleteData struct {
	To             string
	UserName       string
	DurationMin    int
	ProblemsSolved int
	TopicStudied   string
	OvertimeMin    int
}

type DailySummaryData struct {
	To             string
	UserName       string
	Date           time.Time
	ProblemsSolved int
	StudyMinutes   int
	TopicsStudied  []string
	Streak         int
}

type AdminData struct {
	UserName   string
	UserEmail  string
	SignedUpAt time.Time
	Provider   string
	AvatarURL  string
}

type Turn struct {
	Role    string
	Content string
}
