package out

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dsaboost/internal/modules/session/domain"
	sessionout "dsaboost/internal/modules/session/port/out"
	apperrors "dsaboost/internal/platform/errors"
)

// Querier is the subset of pgx used here; *pgxpool.Pool and pgxmock pools
// both satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const activeSessionsDDL = `
CREATE TABLE IF NOT EXISTS active_sessions (
	user_id TEXT PRIMARY KEY,
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	topic_id TEXT,
	topic_title TEXT,
	start_time TIMESTAMPTZ,
	time_left INTEGER NOT NULL DEFAULT 0,
	planned_duration INTEGER NOT NULL DEFAULT 0,
	problems_solved INTEGER NOT NULL DEFAULT 0,
	device_id TEXT NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL,
	seq TEXT NOT NULL DEFAULT ''
)`

type PostgresActiveSessionRepository struct {
	db Querier
}

func NewPostgresActiveSessionRepository(db Querier) *PostgresActiveSessionRepository {
	return &PostgresActiveSessionRepository{db: db}
}

var _ sessionout.ActiveSessionRepository = (*PostgresActiveSessionRepository)(nil)

func ConnectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (r *PostgresActiveSessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, activeSessionsDDL); err != nil {
		return fmt.Errorf("ensure active_sessions: %w", err)
	}
	return nil
}

// Upsert replaces every column of the user's row.
func (r *PostgresActiveSessionRepository) Upsert(ctx context.Context, record domain.ActiveSessionRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO active_sessions (user_id, is_active, topic_id, topic_title, start_time, time_left, planned_duration, problems_solved, device_id, last_updated, seq)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (user_id) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			topic_id = EXCLUDED.topic_id,
			topic_title = EXCLUDED.topic_title,
			start_time = EXCLUDED.start_time,
			time_left = EXCLUDED.time_left,
			planned_duration = EXCLUDED.planned_duration,
			problems_solved = EXCLUDED.problems_solved,
			device_id = EXCLUDED.device_id,
			last_updated = EXCLUDED.last_updated,
			seq = EXCLUDED.seq
	`, record.UserID, record.IsActive, nullable(record.TopicID), nullable(record.TopicTitle), record.StartTime,
		record.TimeLeft, record.PlannedDurationSeconds, record.ProblemsSolved, record.DeviceID, record.LastUpdated, record.Seq)
	if err != nil {
		return fmt.Errorf("upsert active session: %w", err)
	}
	return nil
}

func (r *PostgresActiveSessionRepository) Get(ctx context.Context, userID string) (domain.ActiveSessionRecord, error) {
	record := domain.ActiveSessionRecord{}
	var topicID, topicTitle *string
	err := r.db.QueryRow(ctx, `
		SELECT user_id, is_active, topic_id, topic_title, start_time, time_left, planned_duration, problems_solved, device_id, last_updated, seq
		FROM active_sessions
		WHERE user_id=$1
	`, userID).Scan(&record.UserID, &record.IsActive, &topicID, &topicTitle, &record.StartTime,
		&record.TimeLeft, &record.PlannedDurationSeconds, &record.ProblemsSolved, &record.DeviceID, &record.LastUpdated, &record.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ActiveSessionRecord{}, apperrors.ErrNotFound
		}
		return domain.ActiveSessionRecord{}, fmt.Errorf("get active session: %w", err)
	}
	if topicID != nil {
		record.TopicID = *topicID
	}
	if topicTitle != nil {
		record.TopicTitle = *topicTitle
	}
	return record, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
