package slug_test

import (
	"strings"
	"testing"
	"time"

	"dsaboost/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Two Pointers Technique":   "two-pointers-technique",
		"  Stack & Queue!! ":       "stack-queue",
		"???":                      "untitled",
		"Dynamic Programming (DP)": "dynamic-programming-dp",
		"Tries – prefix trees":     "tries-prefix-trees",
	}
	for in, want := range cases {
		if got := slug.Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
	long := slug.Make(strings.Repeat("graph ", 20))
	if len(long) > 48 || strings.HasSuffix(long, "-") {
		t.Fatalf("long slug not trimmed: %q", long)
	}
}

func TestSessionFile(t *testing.T) {
	t.Parallel()
	end := time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC)
	if got := slug.SessionFile("Binary Search", end); got != "090507-binary-search.md" {
		t.Fatalf("SessionFile = %q", got)
	}
}
