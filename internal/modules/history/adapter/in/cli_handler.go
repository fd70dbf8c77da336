package in

import (
	"context"
	"time"

	"dsaboost/internal/modules/history/domain"
	"dsaboost/internal/modules/history/dto"
	historyin "dsaboost/internal/modules/history/port/in"
)

type CLIHandler struct {
	usecase historyin.Usecase
}

func NewCLIHandler(usecase historyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, userID string, limit int) ([]dto.EntryOutput, error) {
	return h.usecase.List(ctx, userID, limit)
}

// Daily returns the last days aggregates ending today.
func (h CLIHandler) Daily(ctx context.Context, userID string, days int) ([]dto.DailyLogOutput, error) {
	if days <= 0 {
		days = 7
	}
	today := time.Now()
	from := today.AddDate(0, 0, -(days - 1)).Format(domain.DateLayout)
	return h.usecase.Daily(ctx, userID, from, today.Format(domain.DateLayout))
}

func (h CLIHandler) Summary(ctx context.Context, userID string) (dto.SummaryOutput, error) {
	return h.usecase.Summary(ctx, userID)
}
