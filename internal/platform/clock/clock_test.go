package clock_test

import (
	"testing"
	"time"

	"dsaboost/internal/platform/clock"
)

func TestCeilMinutes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{-time.Minute, 0},
		{time.Second, 1},
		{time.Minute, 1},
		{time.Minute + time.Millisecond, 2},
		{25 * time.Minute, 25},
	}
	for _, tc := range cases {
		if got := clock.CeilMinutes(tc.in); got != tc.want {
			t.Fatalf("CeilMinutes(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := clock.CeilSecondsToMinutes(1500); got != 25 {
		t.Fatalf("1500s should be 25 minutes, got %d", got)
	}
	if got := clock.CeilSecondsToMinutes(61); got != 2 {
		t.Fatalf("61s should be 2 minutes, got %d", got)
	}
}
