package in

import (
	"context"

	"dsaboost/internal/modules/session/dto"
)

// LocalStore mirrors the timer into the vault-local key/value store shared by
// every process on this machine.
type LocalStore interface {
	Persist(ctx context.Context, state dto.State) error
	Hydrate(ctx context.Context, viewingTopic string) (dto.HydrateOutput, error)
	// Park keeps a paused session until it is resumed or ended. A running or
	// never started state clears it.
	Park(ctx context.Context, state dto.State) error
	Parked(ctx context.Context, viewingTopic string) (dto.HydrateOutput, error)
	OnExternalChange(ctx context.Context, fn func(dto.State)) error
}

// Mirror keeps one active-session record per user on the backend.
type Mirror interface {
	DeviceID() string
	StartSession(ctx context.Context, userID string, state dto.State) error
	UpdateTimeLeft(ctx context.Context, userID string, timeLeft int) (bool, error)
	UpdateProblems(ctx context.Context, userID string, problems int) error
	Sync(ctx context.Context, userID string, state dto.State) error
	EndSession(ctx context.Context, userID string) error
	Current() (dto.Record, bool)
	Load(ctx context.Context, userID string) (dto.Record, error)
	Subscribe(ctx context.Context, userID string, fn func(dto.Record)) error
	SignedOut()
}
