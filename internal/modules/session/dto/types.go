package dto

import "time"

// State is the timer state exchanged with the session stores.
type State struct {
	IsActive               bool
	TopicID                string
	TopicTitle             string
	StartTime              *time.Time
	TimeLeft               int
	PlannedDurationSeconds int
	ProblemsSolved         int
}

type HydrateOutput struct {
	State   State
	Visible bool
}

type Record struct {
	UserID      string
	State       State
	DeviceID    string
	LastUpdated time.Time
	Seq         string
}
