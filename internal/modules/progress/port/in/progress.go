package in

import (
	"context"

	"dsaboost/internal/modules/progress/dto"
)

type Usecase interface {
	MarkProblemCompleted(ctx context.Context, userID, topicID string) (dto.ProgressOutput, error)
	RecordStudy(ctx context.Context, userID, topicID string, minutes int) (dto.ProgressOutput, error)
	Get(ctx context.Context, userID, topicID string) (dto.ProgressOutput, error)
	List(ctx context.Context, userID string) ([]dto.ProgressOutput, error)
	Topics(ctx context.Context, userID string) ([]dto.TopicOutput, error)
	Stats(ctx context.Context, userID string) (dto.StatsOutput, error)
	Reset(ctx context.Context, userID, topicID string) error
}
