package in

import (
	"context"

	"dsaboost/internal/modules/progress/dto"
	progressin "dsaboost/internal/modules/progress/port/in"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Mark(ctx context.Context, userID, topicID string) (dto.ProgressOutput, error) {
	return h.usecase.MarkProblemCompleted(ctx, userID, topicID)
}

func (h CLIHandler) Topics(ctx context.Context, userID string) ([]dto.TopicOutput, error) {
	return h.usecase.Topics(ctx, userID)
}

func (h CLIHandler) Stats(ctx context.Context, userID string) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx, userID)
}

func (h CLIHandler) Reset(ctx context.Context, userID, topicID string) error {
	return h.usecase.Reset(ctx, userID, topicID)
}
