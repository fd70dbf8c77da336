package out

import (
	"context"

	"dsaboost/internal/modules/timer/dto"
)

// Backend is a persistence strategy for the timer state. Apply runs off the
// tick path; Load returns apperrors.ErrNoActiveSession when there is nothing
// to restore.
type Backend interface {
	Name() string
	Apply(ctx context.Context, change dto.Change) error
	Load(ctx context.Context, viewingTopic string) (dto.RestoreOutput, error)
	Watch(ctx context.Context, fn func(dto.Snapshot)) error
}

type HistoryRecorder interface {
	Record(ctx context.Context, userID string, result dto.Result) (bool, error)
}

type ProgressRecorder interface {
	RecordStudy(ctx context.Context, userID, topicID string, minutes int) error
}

type ActivityTracker interface {
	StartTracking(ctx context.Context, topicID, topicTitle string) error
	StopTracking(ctx context.Context, completed bool) error
}

type Notifier interface {
	SessionEnded(ctx context.Context, userID string, result dto.Result) error
}

// IdentityProvider yields the signed-in user or "" when signed out.
type IdentityProvider interface {
	CurrentUserID(ctx context.Context) string
}
