package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// TickerFactory starts a repeating tick source and returns its channel and a
// stop function. The timer loop takes one so tests can drive ticks by hand.
type TickerFactory func(interval time.Duration) (<-chan time.Time, func())

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// CeilMinutes rounds a duration up to whole minutes. Negative durations are 0.
func CeilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	minutes := int(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	return minutes
}

// CeilSecondsToMinutes rounds a second count up to whole minutes.
func CeilSecondsToMinutes(seconds int) int {
	return CeilMinutes(time.Duration(seconds) * time.Second)
}
