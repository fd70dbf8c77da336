package in

import (
	"context"

	"dsaboost/internal/modules/timer/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.Snapshot, error)
	Pause(ctx context.Context) (dto.Snapshot, error)
	Resume(ctx context.Context) (dto.Snapshot, error)
	Stop(ctx context.Context) (dto.Result, error)
	Complete(ctx context.Context) (dto.Result, error)
	Reset(ctx context.Context) (dto.Snapshot, error)
	Tick(ctx context.Context) (dto.Snapshot, error)
	SetProblems(ctx context.Context, n int) (dto.Snapshot, error)
	IncrementProblems(ctx context.Context, topicID string, delta int) (dto.Snapshot, error)
	Snapshot() dto.Snapshot
	Subscribe(fn func(dto.Snapshot)) (cancel func())
	Restore(ctx context.Context, viewingTopic string) (dto.RestoreOutput, error)
	Watch(ctx context.Context) error
	Close() error
}
