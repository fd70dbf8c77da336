package out

import (
	"context"

	"dsaboost/internal/modules/history/domain"
)

type Store interface {
	// Append stores the entry and folds daily into its aggregate atomically.
	// added is false when the same user already has a session for the topic
	// with that start time.
	Append(ctx context.Context, entry domain.Entry, daily domain.DailyLog) (added bool, err error)
	SetNotePath(ctx context.Context, entryID, path string) error
	ListEntries(ctx context.Context, userID string, limit int) ([]domain.Entry, error)
	ListDaily(ctx context.Context, userID, from, to string) ([]domain.DailyLog, error)
	Totals(ctx context.Context, userID string) (domain.Totals, error)
}

// NoteWriter renders an entry as a markdown note and returns its path.
type NoteWriter interface {
	Write(ctx context.Context, entry domain.Entry) (string, error)
}
