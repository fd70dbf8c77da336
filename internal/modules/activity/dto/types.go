package dto

import "time"

type VisitOutput struct {
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Open      bool          `json:"open"`
}

type TrackingOutput struct {
	Tracking   bool          `json:"tracking"`
	TopicID    string        `json:"topicId,omitempty"`
	TopicTitle string        `json:"topicTitle,omitempty"`
	StartTime  time.Time     `json:"startTime"`
	Visits     []VisitOutput `json:"visits"`
}

type CompletedOutput struct {
	TopicID    string        `json:"topicId"`
	TopicTitle string        `json:"topicTitle"`
	StartTime  time.Time     `json:"startTime"`
	Total      time.Duration `json:"total"`
	Visits     []VisitOutput `json:"visits"`
}
