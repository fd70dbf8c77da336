package out

import (
	"context"

	"dsaboost/internal/modules/session/domain"
)

type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Watch reports changes made by other processes. value is nil on removal.
	Watch(ctx context.Context, fn func(key string, value []byte)) error
}

// ActiveSessionRepository returns apperrors.ErrNotFound when the user has no row.
type ActiveSessionRepository interface {
	Upsert(ctx context.Context, record domain.ActiveSessionRecord) error
	Get(ctx context.Context, userID string) (domain.ActiveSessionRecord, error)
}

type ChangeFeed interface {
	Publish(ctx context.Context, record domain.ActiveSessionRecord) error
	Subscribe(ctx context.Context, userID string, fn func(domain.ActiveSessionRecord)) error
}

// LegacyStore exposes the purely local session written before sign-in.
type LegacyStore interface {
	LoadLegacy(ctx context.Context) (domain.LocalSession, error)
	DiscardLegacy(ctx context.Context) error
}
