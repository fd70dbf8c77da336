package out_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	sessionadapter "dsaboost/internal/modules/session/adapter/out"
	"dsaboost/internal/modules/session/domain"
	apperrors "dsaboost/internal/platform/errors"
)

var columns = []string{"user_id", "is_active", "topic_id", "topic_title", "start_time", "time_left", "planned_duration", "problems_solved", "device_id", "last_updated", "seq"}

func TestPostgresUpsertOverwritesRow(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	repo := sessionadapter.NewPostgresActiveSessionRepository(mock)
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	topic := "two-pointers"
	title := "Two Pointers"

	mock.ExpectExec(`INSERT INTO active_sessions .* ON CONFLICT \(user_id\) DO UPDATE SET`).
		WithArgs("user-1", true, &topic, &title, pgxmock.AnyArg(), 1200, 1500, 2, "device_1_abc", pgxmock.AnyArg(), "seq-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Upsert(context.Background(), domain.ActiveSessionRecord{
		UserID: "user-1", IsActive: true, TopicID: topic, TopicTitle: title, StartTime: &start,
		TimeLeft: 1200, PlannedDurationSeconds: 1500, ProblemsSolved: 2, DeviceID: "device_1_abc",
		LastUpdated: start.Add(time.Minute), Seq: "seq-1",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresGet(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	repo := sessionadapter.NewPostgresActiveSessionRepository(mock)
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	topic := "graphs"
	title := "Graphs"

	mock.ExpectQuery(`SELECT user_id, is_active, topic_id, topic_title, start_time`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("user-1", true, &topic, &title, &start, 900, 1500, 1, "device_9_xyz", start.Add(10*time.Second), "seq-9"))

	record, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.TopicID != "graphs" || record.TimeLeft != 900 || record.StartTime == nil || !record.StartTime.Equal(start) {
		t.Fatalf("unexpected record %+v", record)
	}

	mock.ExpectQuery(`SELECT user_id, is_active`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(context.Background(), "nobody"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing row should map to ErrNotFound, got %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, is_active`).
		WithArgs("user-2").
		WillReturnError(errors.New("connection reset"))
	if _, err := repo.Get(context.Background(), "user-2"); err == nil || errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("transport failure should surface, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS active_sessions`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	if err := sessionadapter.NewPostgresActiveSessionRepository(mock).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
