package domain

import "time"

const (
	TrackingKey  = "dsa-browser-history"
	CompletedKey = "dsa-completed-sessions"
)

// Visit is one page or resource the user looked at during a session.
// VisitDuration is in milliseconds and stays nil while the visit is open.
type Visit struct {
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Timestamp     time.Time `json:"timestamp"`
	VisitDuration *int64    `json:"visitDuration,omitempty"`
}

func (v Visit) Close(now time.Time) Visit {
	ms := now.Sub(v.Timestamp).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	v.VisitDuration = &ms
	return v
}

type TopicInfo struct {
	TopicID    string `json:"topicId"`
	TopicTitle string `json:"topicTitle"`
}

// Tracking is the in-progress visit log stored under TrackingKey.
type Tracking struct {
	History   []Visit   `json:"history"`
	StartTime int64     `json:"startTime"`
	TopicInfo TopicInfo `json:"topicInfo"`
	Current   *Visit    `json:"current,omitempty"`
}

func NewTracking(topicID, topicTitle string, initial Visit, now time.Time) Tracking {
	return Tracking{
		History:   []Visit{},
		StartTime: now.UnixMilli(),
		TopicInfo: TopicInfo{TopicID: topicID, TopicTitle: topicTitle},
		Current:   &initial,
	}
}

// Navigate closes the open visit and opens next.
func (t *Tracking) Navigate(next Visit, now time.Time) {
	t.closeCurrent(now)
	t.Current = &next
}

// Hide closes the open visit without opening another.
func (t *Tracking) Hide(now time.Time) {
	t.closeCurrent(now)
}

// Show reopens a visit only when none is open.
func (t *Tracking) Show(visit Visit) bool {
	if t.Current != nil {
		return false
	}
	t.Current = &visit
	return true
}

func (t *Tracking) Clear() {
	t.History = []Visit{}
	t.Current = nil
}

// Finish closes the open visit and returns the completed record.
func (t *Tracking) Finish(now time.Time) CompletedSession {
	t.closeCurrent(now)
	return CompletedSession{
		History:    append([]Visit{}, t.History...),
		StartTime:  t.StartTime,
		TopicID:    t.TopicInfo.TopicID,
		TopicTitle: t.TopicInfo.TopicTitle,
	}
}

func (t *Tracking) closeCurrent(now time.Time) {
	if t.Current == nil {
		return
	}
	t.History = append(t.History, t.Current.Close(now))
	t.Current = nil
}

type CompletedSession struct {
	History    []Visit `json:"history"`
	StartTime  int64   `json:"startTime"`
	TopicID    string  `json:"topicId"`
	TopicTitle string  `json:"topicTitle"`
}

func (c CompletedSession) TotalDuration() time.Duration {
	var total int64
	for _, visit := range c.History {
		if visit.VisitDuration != nil {
			total += *visit.VisitDuration
		}
	}
	return time.Duration(total) * time.Millisecond
}
