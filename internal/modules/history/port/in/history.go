package in

import (
	"context"

	"dsaboost/internal/modules/history/dto"
)

type Usecase interface {
	Record(ctx context.Context, input dto.RecordInput) (dto.RecordOutput, error)
	List(ctx context.Context, userID string, limit int) ([]dto.EntryOutput, error)
	// Daily returns aggregates for dates in [from, to]; empty bounds are open.
	Daily(ctx context.Context, userID, from, to string) ([]dto.DailyLogOutput, error)
	Summary(ctx context.Context, userID string) (dto.SummaryOutput, error)
}
