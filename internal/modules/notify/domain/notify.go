package domain

import "fmt"

const AppName = "DSA Daily Boost"

// Policy decides which channels an ended session is announced on.
type Policy struct {
	Desktop         bool
	EmailMinMinutes int
}

// Ending is what notify needs to know about a finished session.
type Ending struct {
	Completed       bool
	TopicTitle      string
	ActualMinutes   int
	PlannedMinutes  int
	OvertimeMinutes int
	ProblemsSolved  int
}

// WantsDesktop is true only for sessions that ran to zero.
func (p Policy) WantsDesktop(e Ending) bool {
	return p.Desktop && e.Completed
}

// WantsEmail requires the user's opt-in; a manual stop also needs at least
// EmailMinMinutes of study.
func (p Policy) WantsEmail(e Ending, optedIn bool) bool {
	if !optedIn {
		return false
	}
	if e.Completed {
		return true
	}
	return e.ActualMinutes >= p.EmailMinMinutes
}

func DesktopMessage(e Ending) (summary, body string) {
	return "🎉 Study Session Complete!",
		fmt.Sprintf("Excellent work! You completed %dmin timer for %s and solved %d problems!", e.PlannedMinutes, e.TopicTitle, e.ProblemsSolved)
}
