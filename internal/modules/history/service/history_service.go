package service

import (
	"fmt"
	"strings"
	"time"

	"dsaboost/internal/modules/history/domain"
	"dsaboost/internal/modules/history/dto"
	"dsaboost/internal/platform/clock"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/platform/id"
)

type HistoryService struct {
	clock    clock.Clock
	ids      id.Generator
	location *time.Location
}

// NewHistoryService buckets daily logs by calendar day in loc (time.Local
// when nil).
func NewHistoryService(clk clock.Clock, ids id.Generator, loc *time.Location) *HistoryService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if ids == nil {
		ids = id.UUID{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &HistoryService{clock: clk, ids: ids, location: loc}
}

func (s *HistoryService) Now() time.Time {
	return s.clock.Now().In(s.location)
}

// Build computes the entry and the daily increment for a terminated session.
// ok is false when less than one whole second elapsed; such sessions are not
// logged.
func (s *HistoryService) Build(input dto.RecordInput) (domain.Entry, domain.DailyLog, bool, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.TopicID) == "" {
		return domain.Entry{}, domain.DailyLog{}, false, fmt.Errorf("%w: user and topic are required", apperrors.ErrInvalidInput)
	}
	if input.StartTime.IsZero() {
		return domain.Entry{}, domain.DailyLog{}, false, fmt.Errorf("%w: session never started", apperrors.ErrInvalidInput)
	}
	end := input.EndTime
	if end.IsZero() {
		end = s.clock.Now()
	}
	elapsed := end.Sub(input.StartTime)
	if elapsed < time.Second {
		return domain.Entry{}, domain.DailyLog{}, false, nil
	}
	actual := clock.CeilMinutes(elapsed)
	planned := clock.CeilSecondsToMinutes(input.PlannedDurationSeconds)
	overtime := actual - planned
	if overtime < 0 {
		overtime = 0
	}
	title := input.TopicTitle
	if title == "" {
		title = input.TopicID
	}
	entry := domain.Entry{
		ID:                     s.ids.New(),
		UserID:                 input.UserID,
		TopicID:                input.TopicID,
		TopicTitle:             title,
		StartTime:              input.StartTime,
		EndTime:                end,
		PlannedDurationSeconds: input.PlannedDurationSeconds,
		ActualDurationSeconds:  int(elapsed / time.Second),
		PlannedMinutes:         planned,
		ActualMinutes:          actual,
		OvertimeMinutes:        overtime,
		ProblemsSolved:         input.ProblemsSolved,
		CompletedNormally:      input.Completed,
	}
	daily := domain.DailyLog{
		UserID:          input.UserID,
		Date:            end.In(s.location).Format(domain.DateLayout),
		ProblemsSolved:  input.ProblemsSolved,
		StudyMinutes:    actual,
		TimerMinutes:    planned,
		OvertimeMinutes: overtime,
		Sessions:        1,
	}
	return entry, daily, true, nil
}

func ToEntryOutput(entry domain.Entry) dto.EntryOutput {
	return dto.EntryOutput{
		ID:                     entry.ID,
		TopicID:                entry.TopicID,
		TopicTitle:             entry.TopicTitle,
		StartTime:              entry.StartTime,
		EndTime:                entry.EndTime,
		PlannedDurationSeconds: entry.PlannedDurationSeconds,
		ActualDurationSeconds:  entry.ActualDurationSeconds,
		ActualMinutes:          entry.ActualMinutes,
		OvertimeMinutes:        entry.OvertimeMinutes,
		ProblemsSolved:         entry.ProblemsSolved,
		CompletedNormally:      entry.CompletedNormally,
		NotePath:               entry.NotePath,
	}
}

func ToDailyOutput(log domain.DailyLog) dto.DailyLogOutput {
	return dto.DailyLogOutput{
		Date:            log.Date,
		ProblemsSolved:  log.ProblemsSolved,
		StudyMinutes:    log.StudyMinutes,
		TimerMinutes:    log.TimerMinutes,
		OvertimeMinutes: log.OvertimeMinutes,
		Sessions:        log.Sessions,
	}
}
