package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dsaboost/internal/modules/history/domain"
	historyout "dsaboost/internal/modules/history/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteHistoryStore struct {
	db *sql.DB
}

func NewSQLiteHistoryStore(dbPath string) (*SQLiteHistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteHistoryStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

var _ historyout.Store = (*SQLiteHistoryStore)(nil)

func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistoryStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS study_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  topic_id TEXT NOT NULL,
  topic_title TEXT NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  planned_duration INTEGER NOT NULL,
  actual_duration INTEGER NOT NULL,
  planned_minutes INTEGER NOT NULL,
  actual_minutes INTEGER NOT NULL,
  overtime_minutes INTEGER NOT NULL,
  problems_solved INTEGER NOT NULL,
  completed_normally INTEGER NOT NULL,
  note_path TEXT
);
CREATE INDEX IF NOT EXISTS study_sessions_user_end ON study_sessions (user_id, end_time);
CREATE UNIQUE INDEX IF NOT EXISTS study_sessions_user_topic_start ON study_sessions (user_id, topic_id, start_time);
CREATE TABLE IF NOT EXISTS daily_logs (
  user_id TEXT NOT NULL,
  log_date TEXT NOT NULL,
  problems_solved INTEGER NOT NULL,
  study_minutes INTEGER NOT NULL,
  timer_minutes INTEGER NOT NULL,
  overtime_minutes INTEGER NOT NULL,
  sessions INTEGER NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (user_id, log_date)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	return nil
}

// Append runs the insert and the daily upsert in one transaction. A second
// record of the same session leaves both tables untouched.
func (s *SQLiteHistoryStore) Append(ctx context.Context, entry domain.Entry, daily domain.DailyLog) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertEntry = `
INSERT INTO study_sessions (id, user_id, topic_id, topic_title, start_time, end_time, planned_duration, actual_duration, planned_minutes, actual_minutes, overtime_minutes, problems_solved, completed_normally, note_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, topic_id, start_time) DO NOTHING;
`
	res, err := tx.ExecContext(ctx, insertEntry,
		entry.ID,
		entry.UserID,
		entry.TopicID,
		entry.TopicTitle,
		formatTime(entry.StartTime),
		formatTime(entry.EndTime),
		entry.PlannedDurationSeconds,
		entry.ActualDurationSeconds,
		entry.PlannedMinutes,
		entry.ActualMinutes,
		entry.OvertimeMinutes,
		entry.ProblemsSolved,
		boolInt(entry.CompletedNormally),
		entry.NotePath,
	)
	if err != nil {
		return false, fmt.Errorf("append study session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append study session: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	const upsertDaily = `
INSERT INTO daily_logs (user_id, log_date, problems_solved, study_minutes, timer_minutes, overtime_minutes, sessions, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, log_date) DO UPDATE SET
  problems_solved=daily_logs.problems_solved + excluded.problems_solved,
  study_minutes=daily_logs.study_minutes + excluded.study_minutes,
  timer_minutes=daily_logs.timer_minutes + excluded.timer_minutes,
  overtime_minutes=daily_logs.overtime_minutes + excluded.overtime_minutes,
  sessions=daily_logs.sessions + excluded.sessions,
  updated_at=excluded.updated_at;
`
	if _, err := tx.ExecContext(ctx, upsertDaily,
		daily.UserID,
		daily.Date,
		daily.ProblemsSolved,
		daily.StudyMinutes,
		daily.TimerMinutes,
		daily.OvertimeMinutes,
		daily.Sessions,
		formatTime(time.Now()),
	); err != nil {
		return false, fmt.Errorf("upsert daily log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit history tx: %w", err)
	}
	return true, nil
}

func (s *SQLiteHistoryStore) SetNotePath(ctx context.Context, entryID, path string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE study_sessions SET note_path = ? WHERE id = ?;`, path, entryID); err != nil {
		return fmt.Errorf("set note path: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) ListEntries(ctx context.Context, userID string, limit int) ([]domain.Entry, error) {
	const query = `
SELECT id, user_id, topic_id, topic_title, start_time, end_time, planned_duration, actual_duration, planned_minutes, actual_minutes, overtime_minutes, problems_solved, completed_normally, COALESCE(note_path, '')
FROM study_sessions
WHERE user_id = ?
ORDER BY end_time DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	defer rows.Close()

	out := []domain.Entry{}
	for rows.Next() {
		var (
			entry      domain.Entry
			start, end string
			completed  int
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.TopicID,
			&entry.TopicTitle,
			&start,
			&end,
			&entry.PlannedDurationSeconds,
			&entry.ActualDurationSeconds,
			&entry.PlannedMinutes,
			&entry.ActualMinutes,
			&entry.OvertimeMinutes,
			&entry.ProblemsSolved,
			&completed,
			&entry.NotePath,
		); err != nil {
			return nil, fmt.Errorf("scan study session: %w", err)
		}
		if entry.StartTime, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("parse start_time: %w", err)
		}
		if entry.EndTime, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("parse end_time: %w", err)
		}
		entry.CompletedNormally = completed != 0
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study sessions: %w", err)
	}
	return out, nil
}

func (s *SQLiteHistoryStore) ListDaily(ctx context.Context, userID, from, to string) ([]domain.DailyLog, error) {
	var (
		clauses = []string{"user_id = ?"}
		args    = []any{userID}
	)
	if from != "" {
		clauses = append(clauses, "log_date >= ?")
		args = append(args, from)
	}
	if to != "" {
		clauses = append(clauses, "log_date <= ?")
		args = append(args, to)
	}
	query := `
SELECT user_id, log_date, problems_solved, study_minutes, timer_minutes, overtime_minutes, sessions
FROM daily_logs
WHERE ` + strings.Join(clauses, " AND ") + `
ORDER BY log_date ASC;
`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	defer rows.Close()

	out := []domain.DailyLog{}
	for rows.Next() {
		var log domain.DailyLog
		if err := rows.Scan(&log.UserID, &log.Date, &log.ProblemsSolved, &log.StudyMinutes, &log.TimerMinutes, &log.OvertimeMinutes, &log.Sessions); err != nil {
			return nil, fmt.Errorf("scan daily log: %w", err)
		}
		out = append(out, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily logs: %w", err)
	}
	return out, nil
}

func (s *SQLiteHistoryStore) Totals(ctx context.Context, userID string) (domain.Totals, error) {
	const query = `
SELECT COUNT(*), COALESCE(SUM(completed_normally), 0), COALESCE(SUM(actual_minutes), 0), COALESCE(SUM(overtime_minutes), 0), COALESCE(SUM(problems_solved), 0)
FROM study_sessions
WHERE user_id = ?;
`
	var totals domain.Totals
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&totals.Sessions,
		&totals.CompletedSessions,
		&totals.StudyMinutes,
		&totals.OvertimeMinutes,
		&totals.ProblemsSolved,
	)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("history totals: %w", err)
	}
	return totals, nil
}

// timeLayout is fixed width so that text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
