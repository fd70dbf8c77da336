package in

import (
	"context"

	"dsaboost/internal/modules/activity/dto"
	activityin "dsaboost/internal/modules/activity/port/in"
)

type CLIHandler struct {
	usecase activityin.Usecase
}

func NewCLIHandler(usecase activityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Visit(ctx context.Context, url, title string) error {
	return h.usecase.Visit(ctx, url, title)
}

func (h CLIHandler) Show(ctx context.Context) (dto.TrackingOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Completed(ctx context.Context) ([]dto.CompletedOutput, error) {
	return h.usecase.Completed(ctx)
}

// Clear empties the running log, or the completed list when completed is set.
func (h CLIHandler) Clear(ctx context.Context, completed bool) error {
	if completed {
		return h.usecase.ClearCompleted(ctx)
	}
	return h.usecase.Clear(ctx)
}

// Hidden and Visible follow terminal focus while a session is tracked.
func (h CLIHandler) Hidden(ctx context.Context) error {
	return h.usecase.Hidden(ctx)
}

func (h CLIHandler) Visible(ctx context.Context) error {
	return h.usecase.Visible(ctx)
}
