package domain_test

import (
	"testing"
	"time"

	"dsaboost/internal/modules/identity/domain"
)

func TestDisplayName(t *testing.T) {
	t.Parallel()
	cases := []struct {
		identity domain.Identity
		want     string
	}{
		{domain.Identity{FullName: "Ada Lovelace", Email: "ada@example.com"}, "Ada Lovelace"},
		{domain.Identity{Email: "grace@example.com"}, "grace"},
		{domain.Identity{}, "User"},
	}
	for _, tc := range cases {
		if got := tc.identity.DisplayName(); got != tc.want {
			t.Fatalf("DisplayName() = %q, want %q", got, tc.want)
		}
	}
}

func TestExpired(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if (domain.Identity{}).Expired(now) {
		t.Fatalf("identity without expiry should not expire")
	}
	if !(domain.Identity{ExpiresAt: now}).Expired(now) {
		t.Fatalf("identity expiring now should be expired")
	}
}
