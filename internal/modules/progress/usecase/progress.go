package usecase

import (
	"context"
	"errors"

	"dsaboost/internal/modules/progress/domain"
	"dsaboost/internal/modules/progress/dto"
	progressin "dsaboost/internal/modules/progress/port/in"
	progressout "dsaboost/internal/modules/progress/port/out"
	"dsaboost/internal/modules/progress/service"
	apperrors "dsaboost/internal/platform/errors"
)

type Interactor struct {
	svc   *service.ProgressService
	store progressout.Store
}

func NewInteractor(svc *service.ProgressService, store progressout.Store) progressin.Usecase {
	return &Interactor{svc: svc, store: store}
}

func (i *Interactor) MarkProblemCompleted(ctx context.Context, userID, topicID string) (dto.ProgressOutput, error) {
	if err := i.svc.Validate(userID, topicID); err != nil {
		return dto.ProgressOutput{}, err
	}
	maxProblems := i.svc.MaxProblems(topicID)
	updated, err := i.store.Update(ctx, userID, topicID, func(current domain.Progress, found bool) (domain.Progress, error) {
		p := i.svc.Seed(current, found, userID, topicID)
		p.SolveProblem(maxProblems, i.svc.Now())
		return p, nil
	})
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	return service.ToOutput(updated), nil
}

func (i *Interactor) RecordStudy(ctx context.Context, userID, topicID string, minutes int) (dto.ProgressOutput, error) {
	if err := i.svc.Validate(userID, topicID); err != nil {
		return dto.ProgressOutput{}, err
	}
	updated, err := i.store.Update(ctx, userID, topicID, func(current domain.Progress, found bool) (domain.Progress, error) {
		p := i.svc.Seed(current, found, userID, topicID)
		p.AddStudy(minutes, i.svc.Now())
		return p, nil
	})
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	return service.ToOutput(updated), nil
}

func (i *Interactor) Get(ctx context.Context, userID, topicID string) (dto.ProgressOutput, error) {
	p, err := i.store.Get(ctx, userID, topicID)
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	return service.ToOutput(p), nil
}

func (i *Interactor) List(ctx context.Context, userID string) ([]dto.ProgressOutput, error) {
	rows, err := i.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProgressOutput, 0, len(rows))
	for _, row := range rows {
		out = append(out, service.ToOutput(row))
	}
	return out, nil
}

// Topics lists the catalog in order with the user's progress merged in.
func (i *Interactor) Topics(ctx context.Context, userID string) ([]dto.TopicOutput, error) {
	rows, err := i.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	byTopic := make(map[string]domain.Progress, len(rows))
	for _, row := range rows {
		byTopic[row.TopicID] = row
	}
	topics := i.svc.Catalog().Topics()
	out := make([]dto.TopicOutput, 0, len(topics))
	for _, topic := range topics {
		out = append(out, service.ToTopicOutput(topic, byTopic[topic.ID]))
	}
	return out, nil
}

func (i *Interactor) Stats(ctx context.Context, userID string) (dto.StatsOutput, error) {
	rows, err := i.store.List(ctx, userID)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	weekStart := domain.WeekStart(i.svc.Now())
	out := dto.StatsOutput{}
	for _, row := range rows {
		out.TotalProblems += row.ProblemsSolved
		out.TotalStudyTime += row.StudyMinutes
		if row.MasteryLevel >= domain.MasteredThreshold {
			out.TopicsMastered++
		}
		if row.LastStudied.Before(weekStart) {
			continue
		}
		out.Weekly.ProblemsCompleted += row.ProblemsSolved
		out.Weekly.StudyTimeCompleted += row.StudyMinutes
		if row.Completed {
			out.Weekly.TopicsCompleted++
		}
	}
	return out, nil
}

func (i *Interactor) Reset(ctx context.Context, userID, topicID string) error {
	if err := i.svc.Validate(userID, topicID); err != nil {
		return err
	}
	if err := i.store.Delete(ctx, userID, topicID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}
