package id_test

import (
	"regexp"
	"testing"
	"time"

	"dsaboost/internal/platform/id"
)

func TestNewDeviceIDFormat(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	got := id.NewDeviceID(now)
	pattern := regexp.MustCompile(`^device_\d+_[0-9a-z]{9}$`)
	if !pattern.MatchString(got) {
		t.Fatalf("unexpected device id %q", got)
	}
	if other := id.NewDeviceID(now); other == got {
		t.Fatalf("device ids should differ between loads")
	}
}

func TestGenerators(t *testing.T) {
	t.Parallel()
	if len(id.RandomHex{}.New()) != 32 {
		t.Fatalf("random hex should be 32 chars")
	}
	if len(id.UUID{}.New()) != 36 {
		t.Fatalf("uuid should be 36 chars")
	}
}
