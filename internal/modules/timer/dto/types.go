package dto

import "time"

// Snapshot is the read-only view of the timer handed to subscribers and
// persistence backends. StartTime is nil when the session never started.
type Snapshot struct {
	IsActive               bool       `json:"isActive"`
	TopicID                string     `json:"topicId,omitempty"`
	TopicTitle             string     `json:"topicTitle,omitempty"`
	StartTime              *time.Time `json:"startTime"`
	TimeLeft               int        `json:"timeLeft"`
	PlannedDurationSeconds int        `json:"plannedDuration"`
	ProblemsSolved         int        `json:"problemsSolved"`
	OvertimeMinutes        int        `json:"overtimeMinutes"`
}

type ChangeKind string

const (
	ChangeStarted  ChangeKind = "started"
	ChangeResumed  ChangeKind = "resumed"
	ChangeTick     ChangeKind = "tick"
	ChangePaused   ChangeKind = "paused"
	ChangeProblems ChangeKind = "problems"
	ChangeEnded    ChangeKind = "ended"
	ChangeReset    ChangeKind = "reset"
)

type Change struct {
	Kind     ChangeKind
	Snapshot Snapshot
}

type Trigger string

const (
	TriggerStop       Trigger = "stop"
	TriggerCompletion Trigger = "completion"
)

type StartInput struct {
	TopicID         string
	TopicTitle      string
	DurationSeconds int
}

// Result describes a terminal transition and the session it ended.
type Result struct {
	Trigger                Trigger
	TopicID                string
	TopicTitle             string
	StartTime              time.Time
	EndTime                time.Time
	PlannedDurationSeconds int
	ActualDurationSeconds  int
	ActualMinutes          int
	PlannedMinutes         int
	OvertimeMinutes        int
	ProblemsSolved         int
	HistoryRecorded        bool
}

type RestoreOutput struct {
	Snapshot Snapshot
	Source   string
	Visible  bool
}
