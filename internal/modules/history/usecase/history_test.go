package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	historyout "dsaboost/internal/modules/history/adapter/out"
	"dsaboost/internal/modules/history/domain"
	"dsaboost/internal/modules/history/dto"
	historyin "dsaboost/internal/modules/history/port/in"
	"dsaboost/internal/modules/history/service"
	"dsaboost/internal/modules/history/usecase"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/platform/logger"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return "entry-" + string(rune('a'+s.n-1))
}

type failingNotes struct{}

func (failingNotes) Write(context.Context, domain.Entry) (string, error) {
	return "", errors.New("disk full")
}

func newHistory(t *testing.T, now time.Time, withNotes bool) (historyin.Usecase, string) {
	t.Helper()
	vault := t.TempDir()
	store, err := historyout.NewSQLiteHistoryStore(filepath.Join(vault, ".dsaboost", "dsaboost.db"))
	if err != nil {
		t.Fatalf("new history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	var notes = historyout.NewVaultNoteWriter(vault, time.UTC)
	if !withNotes {
		notes = failingNotes{}
	}
	svc := service.NewHistoryService(fixedClock{now: now}, &seqIDs{}, time.UTC)
	return usecase.NewInteractor(svc, store, notes, logger.Discard()), vault
}

func TestRecordComputesMinutesAndWritesNote(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	uc, vault := newHistory(t, start.Add(30*time.Minute), true)

	out, err := uc.Record(context.Background(), dto.RecordInput{
		UserID:                 "u1",
		TopicID:                "arrays",
		TopicTitle:             "Arrays & Strings",
		StartTime:              start,
		EndTime:                start.Add(26*time.Minute + 10*time.Second),
		PlannedDurationSeconds: 1500,
		ProblemsSolved:         3,
		Completed:              true,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !out.Recorded || out.ActualMinutes != 27 || out.PlannedMinutes != 25 || out.OvertimeMinutes != 2 {
		t.Fatalf("unexpected record output: %+v", out)
	}
	wantDir := filepath.Join(vault, "sessions", "2026", "03", "02")
	if !strings.HasPrefix(out.NotePath, wantDir) {
		t.Fatalf("note path %q not under %q", out.NotePath, wantDir)
	}
	content, err := os.ReadFile(out.NotePath)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if !strings.Contains(string(content), "overtime_minutes: 2") || !strings.Contains(string(content), "completed_normally: true") {
		t.Fatalf("note missing frontmatter fields:\n%s", content)
	}

	entries, err := uc.List(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || !entries[0].CompletedNormally || entries[0].ActualDurationSeconds != 1570 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestDailyAggregateAccumulates(t *testing.T) {
	t.Parallel()
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newHistory(t, day.Add(4*time.Hour), true)
	ctx := context.Background()

	if _, err := uc.Record(ctx, dto.RecordInput{
		UserID: "u1", TopicID: "arrays", StartTime: day, EndTime: day.Add(25 * time.Minute),
		PlannedDurationSeconds: 1500, ProblemsSolved: 2, Completed: true,
	}); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if _, err := uc.Record(ctx, dto.RecordInput{
		UserID: "u1", TopicID: "graphs", StartTime: day.Add(time.Hour), EndTime: day.Add(time.Hour + 10*time.Minute),
		PlannedDurationSeconds: 1500, ProblemsSolved: 3,
	}); err != nil {
		t.Fatalf("record second: %v", err)
	}

	logs, err := uc.Daily(ctx, "u1", "2026-03-02", "2026-03-02")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one daily row, got %d", len(logs))
	}
	got := logs[0]
	if got.ProblemsSolved != 5 || got.StudyMinutes != 35 || got.TimerMinutes != 50 || got.Sessions != 2 {
		t.Fatalf("expected accumulated sums, got %+v", got)
	}

	other, err := uc.Daily(ctx, "u2", "", "")
	if err != nil {
		t.Fatalf("daily other user: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no rows for another user, got %+v", other)
	}
}

func TestZeroLengthSessionIsNotRecorded(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newHistory(t, start, true)

	out, err := uc.Record(context.Background(), dto.RecordInput{
		UserID: "u1", TopicID: "arrays", StartTime: start, EndTime: start, PlannedDurationSeconds: 1500,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.Recorded {
		t.Fatalf("zero-length session should not be recorded")
	}
	entries, err := uc.List(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d", len(entries))
	}
}

func TestSubSecondSessionIsNotRecorded(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newHistory(t, start, true)
	ctx := context.Background()

	out, err := uc.Record(ctx, dto.RecordInput{
		UserID: "u1", TopicID: "arrays", StartTime: start, EndTime: start.Add(400 * time.Millisecond), PlannedDurationSeconds: 1500,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.Recorded || out.ActualMinutes != 0 {
		t.Fatalf("sub-second session should not be recorded, got %+v", out)
	}
	logs, err := uc.Daily(ctx, "u1", "", "")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("sub-second session must not touch the daily log, got %+v", logs)
	}

	out, err = uc.Record(ctx, dto.RecordInput{
		UserID: "u1", TopicID: "arrays", StartTime: start, EndTime: start.Add(time.Second), PlannedDurationSeconds: 1500,
	})
	if err != nil || !out.Recorded || out.ActualMinutes != 1 {
		t.Fatalf("one second session should be recorded as one minute, got %+v %v", out, err)
	}
}

func TestSameSessionIsRecordedOnce(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	uc, vault := newHistory(t, start.Add(time.Hour), true)
	ctx := context.Background()

	input := dto.RecordInput{
		UserID: "u1", TopicID: "heaps", TopicTitle: "Heaps", StartTime: start, EndTime: start.Add(25 * time.Minute),
		PlannedDurationSeconds: 1500, ProblemsSolved: 2, Completed: true,
	}
	first, err := uc.Record(ctx, input)
	if err != nil || !first.Recorded {
		t.Fatalf("first record: %+v %v", first, err)
	}
	input.EndTime = input.EndTime.Add(2 * time.Second)
	second, err := uc.Record(ctx, input)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if second.Recorded {
		t.Fatalf("a session recorded twice must be ignored the second time")
	}

	entries, err := uc.List(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].NotePath != first.NotePath {
		t.Fatalf("expected one entry carrying the note path, got %+v", entries)
	}
	logs, err := uc.Daily(ctx, "u1", "", "")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(logs) != 1 || logs[0].Sessions != 1 || logs[0].StudyMinutes != 25 || logs[0].ProblemsSolved != 2 {
		t.Fatalf("daily aggregate counted the duplicate: %+v", logs)
	}
	notes, err := filepath.Glob(filepath.Join(vault, "sessions", "2026", "03", "02", "*.md"))
	if err != nil {
		t.Fatalf("glob notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected one session note, got %v", notes)
	}
}

func TestListOrdersEndTimesWithinOneSecond(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newHistory(t, base.Add(time.Hour), false)
	ctx := context.Background()

	ends := []time.Duration{10*time.Minute + 500*time.Millisecond, 10 * time.Minute, 10*time.Minute + 50*time.Millisecond}
	for n, end := range ends {
		start := base.Add(time.Duration(n) * time.Minute)
		if _, err := uc.Record(ctx, dto.RecordInput{
			UserID: "u1", TopicID: "tries", StartTime: start, EndTime: base.Add(end), PlannedDurationSeconds: 600,
		}); err != nil {
			t.Fatalf("record %d: %v", n, err)
		}
	}
	entries, err := uc.List(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if !entries[0].EndTime.Equal(base.Add(ends[0])) || !entries[1].EndTime.Equal(base.Add(ends[2])) {
		t.Fatalf("limit kept the wrong entries: %v, %v", entries[0].EndTime, entries[1].EndTime)
	}
}

func TestRecordValidatesInputAndToleratesNoteFailure(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newHistory(t, start.Add(time.Hour), false)

	if _, err := uc.Record(context.Background(), dto.RecordInput{UserID: "u1", StartTime: start}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	out, err := uc.Record(context.Background(), dto.RecordInput{
		UserID: "u1", TopicID: "trees", StartTime: start, EndTime: start.Add(90 * time.Second), PlannedDurationSeconds: 600,
	})
	if err != nil {
		t.Fatalf("note failure must not fail the record: %v", err)
	}
	if !out.Recorded || out.NotePath != "" || out.ActualMinutes != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestSummaryStreakAndWeek(t *testing.T) {
	t.Parallel()
	today := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	uc, _ := newHistory(t, today, true)
	ctx := context.Background()

	for _, daysAgo := range []int{0, 1, 2, 9} {
		start := today.AddDate(0, 0, -daysAgo).Add(-2 * time.Hour)
		if _, err := uc.Record(ctx, dto.RecordInput{
			UserID: "u1", TopicID: "dp", StartTime: start, EndTime: start.Add(20 * time.Minute),
			PlannedDurationSeconds: 1200, ProblemsSolved: 1, Completed: true,
		}); err != nil {
			t.Fatalf("record %d: %v", daysAgo, err)
		}
	}

	summary, err := uc.Summary(ctx, "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Sessions != 4 || summary.CompletedSessions != 4 || summary.StudyMinutes != 80 || summary.ProblemsSolved != 4 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.WeeklyMinutes != 60 || summary.WeeklyProblems != 3 {
		t.Fatalf("unexpected weekly numbers: %+v", summary)
	}
	if summary.StreakDays != 3 {
		t.Fatalf("expected 3 day streak, got %d", summary.StreakDays)
	}
}
