package dto

import "time"

type ProgressOutput struct {
	TopicID        string    `json:"topicId"`
	ProblemsSolved int       `json:"problemsSolved"`
	MasteryLevel   int       `json:"masteryLevel"`
	Completed      bool      `json:"completed"`
	StudyMinutes   int       `json:"studyTimeMinutes"`
	LastStudied    time.Time `json:"lastStudied"`
}

type TopicOutput struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Category      string         `json:"category"`
	Difficulty    string         `json:"difficulty"`
	EstimatedTime string         `json:"estimatedTime"`
	ProblemsCount int            `json:"problemsCount"`
	Progress      ProgressOutput `json:"progress"`
}

type WeeklyGoals struct {
	ProblemsCompleted  int `json:"problemsCompleted"`
	StudyTimeCompleted int `json:"studyTimeCompleted"`
	TopicsCompleted    int `json:"topicsCompleted"`
}

type StatsOutput struct {
	TotalProblems  int         `json:"totalProblems"`
	TopicsMastered int         `json:"topicsMastered"`
	TotalStudyTime int         `json:"totalStudyTime"`
	Weekly         WeeklyGoals `json:"weeklyGoals"`
}
