package in

import (
	"context"

	"dsaboost/internal/modules/notify/dto"
)

type Usecase interface {
	SessionEnded(ctx context.Context, input dto.SessionEndedInput) error
	Welcome(ctx context.Context, input dto.WelcomeInput) error
	// DailySummary reports whether an email went out; opted-out and
	// rate-limited users are skipped without error.
	DailySummary(ctx context.Context, input dto.DailySummaryInput) (bool, error)
}
