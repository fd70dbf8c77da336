package in

import (
	"context"
	"errors"

	"dsaboost/internal/modules/timer/dto"
	timerin "dsaboost/internal/modules/timer/port/in"
	apperrors "dsaboost/internal/platform/errors"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Start first adopts any session persisted by another process so a resume
// keeps the original start time.
func (h CLIHandler) Start(ctx context.Context, topicID, topicTitle string, durationSeconds int) (dto.Snapshot, error) {
	if _, err := h.usecase.Restore(ctx, topicID); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
		return dto.Snapshot{}, err
	}
	return h.usecase.Start(ctx, dto.StartInput{TopicID: topicID, TopicTitle: topicTitle, DurationSeconds: durationSeconds})
}

func (h CLIHandler) Pause(ctx context.Context) (dto.Snapshot, error) {
	if err := h.restore(ctx); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (dto.Snapshot, error) {
	if err := h.restore(ctx); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (dto.Result, error) {
	if err := h.restore(ctx); err != nil {
		return dto.Result{}, err
	}
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) (dto.Snapshot, error) {
	if err := h.restore(ctx); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
		return dto.Snapshot{}, err
	}
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.RestoreOutput, error) {
	return h.usecase.Restore(ctx, "")
}

// Problems adds delta to the running session's counter.
func (h CLIHandler) Problems(ctx context.Context, delta int) (dto.Snapshot, error) {
	if err := h.restore(ctx); err != nil {
		return dto.Snapshot{}, err
	}
	return h.usecase.IncrementProblems(ctx, "", delta)
}

func (h CLIHandler) Subscribe(fn func(dto.Snapshot)) func() {
	return h.usecase.Subscribe(fn)
}

func (h CLIHandler) Watch(ctx context.Context) error {
	return h.usecase.Watch(ctx)
}

func (h CLIHandler) Snapshot() dto.Snapshot {
	return h.usecase.Snapshot()
}

func (h CLIHandler) restore(ctx context.Context) error {
	_, err := h.usecase.Restore(ctx, "")
	return err
}
