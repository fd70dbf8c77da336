package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dsaboost/internal/modules/progress/domain"
	progressout "dsaboost/internal/modules/progress/port/out"
	apperrors "dsaboost/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type SQLiteProgressStore struct {
	db *sql.DB
}

func NewSQLiteProgressStore(dbPath string) (*SQLiteProgressStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteProgressStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

var _ progressout.Store = (*SQLiteProgressStore)(nil)

func (s *SQLiteProgressStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteProgressStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS user_progress (
  id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  topic_id TEXT NOT NULL,
  problems_solved INTEGER NOT NULL,
  mastery_level INTEGER NOT NULL,
  completed INTEGER NOT NULL,
  study_time_minutes INTEGER NOT NULL,
  last_studied TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (user_id, topic_id)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create user_progress table: %w", err)
	}
	return nil
}

const selectProgress = `
SELECT id, user_id, topic_id, problems_solved, mastery_level, completed, study_time_minutes, COALESCE(last_studied, ''), created_at, updated_at
FROM user_progress
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteProgressStore) Get(ctx context.Context, userID, topicID string) (domain.Progress, error) {
	row := s.db.QueryRowContext(ctx, selectProgress+`WHERE user_id = ? AND topic_id = ?`, userID, topicID)
	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Progress{}, apperrors.ErrNotFound
	}
	return p, err
}

func (s *SQLiteProgressStore) Update(ctx context.Context, userID, topicID string, fn func(domain.Progress, bool) (domain.Progress, error)) (domain.Progress, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("begin progress update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanProgress(tx.QueryRowContext(ctx, selectProgress+`WHERE user_id = ? AND topic_id = ?`, userID, topicID))
	found := true
	if errors.Is(err, sql.ErrNoRows) {
		found = false
	} else if err != nil {
		return domain.Progress{}, err
	}

	next, err := fn(current, found)
	if err != nil {
		return domain.Progress{}, err
	}
	const stmt = `
INSERT INTO user_progress (id, user_id, topic_id, problems_solved, mastery_level, completed, study_time_minutes, last_studied, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, topic_id) DO UPDATE SET
  problems_solved=excluded.problems_solved,
  mastery_level=excluded.mastery_level,
  completed=excluded.completed,
  study_time_minutes=excluded.study_time_minutes,
  last_studied=excluded.last_studied,
  updated_at=excluded.updated_at;
`
	if _, err := tx.ExecContext(ctx, stmt,
		next.ID,
		next.UserID,
		next.TopicID,
		next.ProblemsSolved,
		next.MasteryLevel,
		boolInt(next.Completed),
		next.StudyMinutes,
		formatTime(next.LastStudied),
		formatTime(next.CreatedAt),
		formatTime(next.UpdatedAt),
	); err != nil {
		return domain.Progress{}, fmt.Errorf("upsert progress: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Progress{}, fmt.Errorf("commit progress update: %w", err)
	}
	return next, nil
}

func (s *SQLiteProgressStore) List(ctx context.Context, userID string) ([]domain.Progress, error) {
	rows, err := s.db.QueryContext(ctx, selectProgress+`WHERE user_id = ? ORDER BY topic_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	out := []domain.Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return out, nil
}

func (s *SQLiteProgressStore) Delete(ctx context.Context, userID, topicID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_progress WHERE user_id = ? AND topic_id = ?`, userID, topicID)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanProgress(row rowScanner) (domain.Progress, error) {
	var (
		p                             domain.Progress
		completed                     int
		lastStudied, created, updated string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.TopicID, &p.ProblemsSolved, &p.MasteryLevel, &completed, &p.StudyMinutes, &lastStudied, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Progress{}, err
		}
		return domain.Progress{}, fmt.Errorf("scan progress: %w", err)
	}
	p.Completed = completed != 0
	p.LastStudied = parseTime(lastStudied)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
