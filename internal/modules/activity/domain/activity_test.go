package domain_test

import (
	"testing"
	"time"

	"dsaboost/internal/modules/activity/domain"
)

func TestTrackingNavigateHideShowFinish(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tracking := domain.NewTracking("two-pointers", "Two Pointers", domain.Visit{URL: "dsaboost://topics/two-pointers", Title: "Two Pointers", Timestamp: start}, start)

	tracking.Navigate(domain.Visit{URL: "https://leetcode.com/problems/3sum", Title: "3Sum", Timestamp: start.Add(2 * time.Minute)}, start.Add(2*time.Minute))
	tracking.Hide(start.Add(5 * time.Minute))
	if tracking.Current != nil || len(tracking.History) != 2 {
		t.Fatalf("hide should close the open visit: %+v", tracking)
	}
	if tracking.Show(domain.Visit{URL: "a", Timestamp: start.Add(6 * time.Minute)}) != true {
		t.Fatalf("show should reopen a visit")
	}
	if tracking.Show(domain.Visit{URL: "b"}) {
		t.Fatalf("show must not replace an open visit")
	}

	done := tracking.Finish(start.Add(7 * time.Minute))
	if len(done.History) != 3 || done.TopicID != "two-pointers" {
		t.Fatalf("unexpected completed session: %+v", done)
	}
	if got := *done.History[1].VisitDuration; got != int64(3*time.Minute/time.Millisecond) {
		t.Fatalf("unexpected visit duration %d", got)
	}
	if done.TotalDuration() != 6*time.Minute {
		t.Fatalf("unexpected total %v", done.TotalDuration())
	}
}
