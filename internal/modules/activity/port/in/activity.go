package in

import (
	"context"

	"dsaboost/internal/modules/activity/dto"
)

type Usecase interface {
	StartTracking(ctx context.Context, topicID, topicTitle string) error
	Visit(ctx context.Context, url, title string) error
	Hidden(ctx context.Context) error
	Visible(ctx context.Context) error
	StopTracking(ctx context.Context, completed bool) error
	Current(ctx context.Context) (dto.TrackingOutput, error)
	Completed(ctx context.Context) ([]dto.CompletedOutput, error)
	Clear(ctx context.Context) error
	ClearCompleted(ctx context.Context) error
}
