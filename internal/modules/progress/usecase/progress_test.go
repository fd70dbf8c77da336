package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	progressout "dsaboost/internal/modules/progress/adapter/out"
	progressin "dsaboost/internal/modules/progress/port/in"
	"dsaboost/internal/modules/progress/service"
	"dsaboost/internal/modules/progress/usecase"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/platform/id"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newProgress(t *testing.T, now time.Time) progressin.Usecase {
	t.Helper()
	store, err := progressout.NewSQLiteProgressStore(filepath.Join(t.TempDir(), ".dsaboost", "dsaboost.db"))
	if err != nil {
		t.Fatalf("new progress store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	catalog, err := progressout.NewEmbeddedCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return usecase.NewInteractor(service.NewProgressService(fixedClock{now: now}, id.RandomHex{}, catalog), store)
}

func TestMarkProblemCompletedUsesCatalogMax(t *testing.T) {
	t.Parallel()
	uc := newProgress(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		out, err := uc.MarkProblemCompleted(ctx, "u1", "array-basics")
		if err != nil {
			t.Fatalf("mark %d: %v", i, err)
		}
		if i == 9 && (out.MasteryLevel != 67 || out.Completed) {
			t.Fatalf("after 10 problems expected 67/false, got %+v", out)
		}
	}
	got, err := uc.Get(ctx, "u1", "array-basics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProblemsSolved != 11 || got.MasteryLevel != 73 || !got.Completed {
		t.Fatalf("after 11 problems expected 73/true, got %+v", got)
	}

	out, err := uc.MarkProblemCompleted(ctx, "u1", "custom-topic")
	if err != nil {
		t.Fatalf("mark unknown topic: %v", err)
	}
	if out.MasteryLevel != 7 {
		t.Fatalf("unknown topic should use the default max, got %d", out.MasteryLevel)
	}
}

func TestRecordStudyAddsMinutesWithoutTouchingProblems(t *testing.T) {
	t.Parallel()
	uc := newProgress(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := uc.MarkProblemCompleted(ctx, "u1", "dp-basics"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if _, err := uc.RecordStudy(ctx, "u1", "dp-basics", 25); err != nil {
		t.Fatalf("record study: %v", err)
	}
	out, err := uc.RecordStudy(ctx, "u1", "dp-basics", 12)
	if err != nil {
		t.Fatalf("record study: %v", err)
	}
	if out.StudyMinutes != 37 || out.ProblemsSolved != 1 || out.MasteryLevel != 3 {
		t.Fatalf("unexpected progress: %+v", out)
	}
}

func TestProgressIsScopedPerUser(t *testing.T) {
	t.Parallel()
	uc := newProgress(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := uc.MarkProblemCompleted(ctx, "u1", "graph-basics"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if _, err := uc.Get(ctx, "local", "graph-basics"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for another user, got %v", err)
	}
}

func TestConcurrentMarksAreNotLost(t *testing.T) {
	t.Parallel()
	uc := newProgress(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.MarkProblemCompleted(ctx, "u1", "binary-search"); err != nil {
				t.Errorf("mark: %v", err)
			}
		}()
	}
	wg.Wait()
	got, err := uc.Get(ctx, "u1", "binary-search")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProblemsSolved != 8 {
		t.Fatalf("expected 8 problems, got %d", got.ProblemsSolved)
	}
}

func TestTopicsStatsAndReset(t *testing.T) {
	t.Parallel()
	uc := newProgress(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := uc.MarkProblemCompleted(ctx, "u1", "linked-list-reversal"); err != nil {
			t.Fatalf("mark: %v", err)
		}
	}
	if _, err := uc.RecordStudy(ctx, "u1", "linked-list-reversal", 40); err != nil {
		t.Fatalf("record study: %v", err)
	}

	topics, err := uc.Topics(ctx, "u1")
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if len(topics) != 16 || topics[0].ID != "array-basics" {
		t.Fatalf("unexpected catalog listing: %d topics", len(topics))
	}
	var found bool
	for _, topic := range topics {
		if topic.ID == "linked-list-reversal" {
			found = topic.Progress.ProblemsSolved == 2 && topic.ProblemsCount == 16
		}
	}
	if !found {
		t.Fatalf("expected merged progress for linked-list-reversal")
	}

	stats, err := uc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalProblems != 2 || stats.TotalStudyTime != 40 || stats.Weekly.ProblemsCompleted != 2 || stats.TopicsMastered != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := uc.Reset(ctx, "u1", "linked-list-reversal"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := uc.Reset(ctx, "u1", "linked-list-reversal"); err != nil {
		t.Fatalf("second reset should be a no-op: %v", err)
	}
	if _, err := uc.Get(ctx, "u1", "linked-list-reversal"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected reset row to be gone, got %v", err)
	}
}
