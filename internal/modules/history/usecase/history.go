package usecase

import (
	"context"
	"log/slog"

	"dsaboost/internal/modules/history/domain"
	"dsaboost/internal/modules/history/dto"
	historyin "dsaboost/internal/modules/history/port/in"
	historyout "dsaboost/internal/modules/history/port/out"
	"dsaboost/internal/modules/history/service"
)

const DefaultListLimit = 50

type Interactor struct {
	svc    *service.HistoryService
	store  historyout.Store
	notes  historyout.NoteWriter
	logger *slog.Logger
}

// NewInteractor accepts a nil NoteWriter when notes are disabled.
func NewInteractor(svc *service.HistoryService, store historyout.Store, notes historyout.NoteWriter, logger *slog.Logger) historyin.Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactor{svc: svc, store: store, notes: notes, logger: logger.With("component", "history")}
}

func (i *Interactor) Record(ctx context.Context, input dto.RecordInput) (dto.RecordOutput, error) {
	entry, daily, ok, err := i.svc.Build(input)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	if !ok {
		i.logger.Debug("skip sub-second session", "topic_id", input.TopicID, "user_id", input.UserID)
		return dto.RecordOutput{}, nil
	}
	added, err := i.store.Append(ctx, entry, daily)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	if !added {
		i.logger.Debug("session already recorded", "topic_id", entry.TopicID, "user_id", entry.UserID)
		return dto.RecordOutput{}, nil
	}
	if i.notes != nil {
		path, noteErr := i.notes.Write(ctx, entry)
		if noteErr != nil {
			i.logger.Warn("write history note", "op", "note", "user_id", entry.UserID, "error", noteErr)
		} else if err := i.store.SetNotePath(ctx, entry.ID, path); err != nil {
			i.logger.Warn("store note path", "op", "note", "user_id", entry.UserID, "error", err)
		} else {
			entry.NotePath = path
		}
	}
	return dto.RecordOutput{
		Recorded:        true,
		EntryID:         entry.ID,
		ActualMinutes:   entry.ActualMinutes,
		PlannedMinutes:  entry.PlannedMinutes,
		OvertimeMinutes: entry.OvertimeMinutes,
		NotePath:        entry.NotePath,
	}, nil
}

func (i *Interactor) List(ctx context.Context, userID string, limit int) ([]dto.EntryOutput, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	entries, err := i.store.ListEntries(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(entries)
	out := make([]dto.EntryOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, service.ToEntryOutput(entry))
	}
	return out, nil
}

func (i *Interactor) Daily(ctx context.Context, userID, from, to string) ([]dto.DailyLogOutput, error) {
	logs, err := i.store.ListDaily(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DailyLogOutput, 0, len(logs))
	for _, log := range logs {
		out = append(out, service.ToDailyOutput(log))
	}
	return out, nil
}

func (i *Interactor) Summary(ctx context.Context, userID string) (dto.SummaryOutput, error) {
	totals, err := i.store.Totals(ctx, userID)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	logs, err := i.store.ListDaily(ctx, userID, "", "")
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	now := i.svc.Now()
	from, to := domain.WeekRange(now)
	out := dto.SummaryOutput{
		Sessions:          totals.Sessions,
		CompletedSessions: totals.CompletedSessions,
		StudyMinutes:      totals.StudyMinutes,
		OvertimeMinutes:   totals.OvertimeMinutes,
		ProblemsSolved:    totals.ProblemsSolved,
		StreakDays:        domain.Streak(logs, now),
	}
	for _, log := range logs {
		if log.Date >= from && log.Date <= to {
			out.WeeklyMinutes += log.StudyMinutes
			out.WeeklyProblems += log.ProblemsSolved
		}
	}
	return out, nil
}
