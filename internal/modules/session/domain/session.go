package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const SessionKey = "dsa-study-session"

// PausedKey holds a paused session. SessionKey only ever holds a running one.
const PausedKey = "dsa-paused-session"

// LocalSession is the JSON document kept under SessionKey. StartTime is in
// unix milliseconds; 0 means never started.
type LocalSession struct {
	IsActive          bool   `json:"isActive"`
	CurrentTopic      string `json:"currentTopic,omitempty"`
	CurrentTopicTitle string `json:"currentTopicTitle,omitempty"`
	StartTime         int64  `json:"startTime"`
	TimeLeft          int    `json:"timeLeft"`
	PlannedDuration   int    `json:"plannedDuration"`
	ProblemsSolved    int    `json:"problemsSolved"`
}

// Hydrated is the outcome of reading a stored LocalSession at load time.
type Hydrated struct {
	Session LocalSession
	Visible bool
}

// Hydrate recomputes TimeLeft from the wall clock instead of trusting the
// stored value. ok is false for inactive or stale sessions. A session for a
// topic other than viewingTopic is returned with Visible false.
func Hydrate(stored LocalSession, viewingTopic string, now time.Time, staleAfter time.Duration) (Hydrated, bool) {
	if !stored.IsActive || stored.StartTime <= 0 {
		return Hydrated{}, false
	}
	start := time.UnixMilli(stored.StartTime)
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	if staleAfter > 0 && elapsed >= staleAfter {
		return Hydrated{}, false
	}
	planned := stored.PlannedDuration
	if planned <= 0 {
		planned = stored.TimeLeft
	}
	stored.PlannedDuration = planned
	stored.TimeLeft = planned - int(elapsed/time.Second)
	visible := viewingTopic == "" || viewingTopic == stored.CurrentTopic
	return Hydrated{Session: stored, Visible: visible}, true
}

// HydratePaused accepts a stored paused session as is; its TimeLeft only
// moves while running.
func HydratePaused(stored LocalSession, viewingTopic string) (Hydrated, bool) {
	if stored.IsActive || stored.StartTime <= 0 || stored.CurrentTopic == "" {
		return Hydrated{}, false
	}
	visible := viewingTopic == "" || viewingTopic == stored.CurrentTopic
	return Hydrated{Session: stored, Visible: visible}, true
}

// ActiveSessionRecord is the per-user row mirrored to the backend.
type ActiveSessionRecord struct {
	UserID                 string
	IsActive               bool
	TopicID                string
	TopicTitle             string
	StartTime              *time.Time
	TimeLeft               int
	PlannedDurationSeconds int
	ProblemsSolved         int
	DeviceID               string
	LastUpdated            time.Time
	Seq                    string
}

// ShouldWrite reports whether a throttled write is due.
func ShouldWrite(lastWrite, now time.Time, window time.Duration) bool {
	if lastWrite.IsZero() || window <= 0 {
		return true
	}
	return now.Sub(lastWrite) >= window
}

// HLC orders writes across devices; the device id breaks ties.
type HLC struct {
	Wall    int64
	Counter int64
	Device  string
}

func (h HLC) IsZero() bool {
	return h.Wall == 0 && h.Counter == 0 && h.Device == ""
}

func (h HLC) String() string {
	return fmt.Sprintf("%013d:%04d:%s", h.Wall, h.Counter, h.Device)
}

func ParseHLC(raw string) HLC {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return HLC{}
	}
	wall, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return HLC{}
	}
	counter, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return HLC{}
	}
	return HLC{Wall: wall, Counter: counter, Device: parts[2]}
}

func CompareHLC(a, b HLC) int {
	switch {
	case a.Wall != b.Wall:
		if a.Wall < b.Wall {
			return -1
		}
		return 1
	case a.Counter != b.Counter:
		if a.Counter < b.Counter {
			return -1
		}
		return 1
	default:
		return strings.Compare(a.Device, b.Device)
	}
}

// NextHLC returns a timestamp strictly greater than last.
func NextHLC(now time.Time, last HLC, device string) HLC {
	wall := now.UTC().UnixMilli()
	if wall < last.Wall {
		wall = last.Wall
	}
	counter := int64(0)
	if wall == last.Wall {
		counter = last.Counter + 1
	}
	return HLC{Wall: wall, Counter: counter, Device: device}
}
