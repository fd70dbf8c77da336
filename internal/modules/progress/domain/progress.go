package domain

import (
	"math"
	"time"
)

const (
	DefaultMaxProblems = 15
	MasteredThreshold  = 70
)

type Topic struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	Category      string `yaml:"category"`
	Difficulty    string `yaml:"difficulty"`
	EstimatedTime string `yaml:"estimated_time"`
	ProblemsCount int    `yaml:"problems_count"`
}

// MaxProblems is the denominator used for mastery.
func (t Topic) MaxProblems() int {
	if t.ProblemsCount <= 0 {
		return DefaultMaxProblems
	}
	return t.ProblemsCount
}

// Progress is one user's standing on one topic.
type Progress struct {
	ID             string
	UserID         string
	TopicID        string
	ProblemsSolved int
	MasteryLevel   int
	Completed      bool
	StudyMinutes   int
	LastStudied    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewProgress(id, userID, topicID string, now time.Time) Progress {
	return Progress{ID: id, UserID: userID, TopicID: topicID, CreatedAt: now, UpdatedAt: now}
}

// Mastery is min(100, round(solved/max*100)).
func Mastery(solved, maxProblems int) int {
	if maxProblems <= 0 {
		maxProblems = DefaultMaxProblems
	}
	if solved <= 0 {
		return 0
	}
	level := int(math.Round(float64(solved) / float64(maxProblems) * 100))
	if level > 100 {
		return 100
	}
	return level
}

func (p *Progress) SolveProblem(maxProblems int, now time.Time) {
	p.ProblemsSolved++
	p.MasteryLevel = Mastery(p.ProblemsSolved, maxProblems)
	p.Completed = p.MasteryLevel >= MasteredThreshold
	p.LastStudied = now
	p.UpdatedAt = now
}

func (p *Progress) AddStudy(minutes int, now time.Time) {
	if minutes > 0 {
		p.StudyMinutes += minutes
	}
	p.LastStudied = now
	p.UpdatedAt = now
}

// WeekStart is midnight of the Sunday that begins t's week.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}
