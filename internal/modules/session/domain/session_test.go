package domain_test

import (
	"testing"
	"time"

	"dsaboost/internal/modules/session/domain"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestHydrateCorrectsTimeLeft(t *testing.T) {
	t.Parallel()
	stored := domain.LocalSession{
		IsActive:        true,
		CurrentTopic:    "two-pointers",
		StartTime:       now.Add(-90*time.Second - 500*time.Millisecond).UnixMilli(),
		TimeLeft:        1495,
		PlannedDuration: 1500,
	}
	got, ok := domain.Hydrate(stored, "two-pointers", now, 2*time.Hour)
	if !ok || !got.Visible {
		t.Fatalf("expected visible session, got %+v %v", got, ok)
	}
	if got.Session.TimeLeft != 1410 {
		t.Fatalf("expected 1410 seconds left, got %d", got.Session.TimeLeft)
	}
}

func TestHydrateIgnoresStaleAndInactive(t *testing.T) {
	t.Parallel()
	stale := domain.LocalSession{IsActive: true, CurrentTopic: "a", StartTime: now.Add(-3 * time.Hour).UnixMilli(), PlannedDuration: 1500}
	if _, ok := domain.Hydrate(stale, "", now, 2*time.Hour); ok {
		t.Fatalf("stale session must be ignored")
	}
	inactive := domain.LocalSession{IsActive: false, CurrentTopic: "a", StartTime: now.UnixMilli(), PlannedDuration: 1500}
	if _, ok := domain.Hydrate(inactive, "", now, 2*time.Hour); ok {
		t.Fatalf("inactive session must be ignored")
	}
}

func TestHydrateTopicMismatchIsHidden(t *testing.T) {
	t.Parallel()
	stored := domain.LocalSession{IsActive: true, CurrentTopic: "graphs", StartTime: now.Add(-time.Minute).UnixMilli(), PlannedDuration: 600}
	got, ok := domain.Hydrate(stored, "two-pointers", now, 2*time.Hour)
	if !ok || got.Visible {
		t.Fatalf("expected hidden session, got %+v %v", got, ok)
	}
	if got.Session.TimeLeft != 540 {
		t.Fatalf("hidden session should still be corrected, got %d", got.Session.TimeLeft)
	}
}

func TestShouldWrite(t *testing.T) {
	t.Parallel()
	if !domain.ShouldWrite(time.Time{}, now, 10*time.Second) {
		t.Fatalf("first write is always due")
	}
	if domain.ShouldWrite(now, now.Add(9*time.Second), 10*time.Second) {
		t.Fatalf("write inside window must be skipped")
	}
	if !domain.ShouldWrite(now, now.Add(10*time.Second), 10*time.Second) {
		t.Fatalf("write at window boundary is due")
	}
}

func TestHLCOrdering(t *testing.T) {
	t.Parallel()
	first := domain.NextHLC(now, domain.HLC{}, "device_a")
	second := domain.NextHLC(now, first, "device_a")
	if domain.CompareHLC(second, first) <= 0 {
		t.Fatalf("next hlc must be greater: %s vs %s", second, first)
	}
	skewed := domain.NextHLC(now.Add(-time.Minute), second, "device_a")
	if domain.CompareHLC(skewed, second) <= 0 {
		t.Fatalf("hlc must not go backwards on clock skew")
	}
	parsed := domain.ParseHLC(second.String())
	if domain.CompareHLC(parsed, second) != 0 {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, second)
	}
	if !domain.ParseHLC("garbage").IsZero() {
		t.Fatalf("invalid hlc should parse as zero")
	}
	tieA := domain.HLC{Wall: 1, Counter: 0, Device: "a"}
	tieB := domain.HLC{Wall: 1, Counter: 0, Device: "b"}
	if domain.CompareHLC(tieA, tieB) >= 0 {
		t.Fatalf("device id should break ties")
	}
}
