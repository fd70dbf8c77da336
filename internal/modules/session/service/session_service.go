package service

import (
	"time"

	"dsaboost/internal/modules/session/domain"
	"dsaboost/internal/modules/session/dto"
	"dsaboost/internal/platform/clock"
)

type SessionService struct {
	clock      clock.Clock
	staleAfter time.Duration
}

func NewSessionService(clock clock.Clock, staleAfter time.Duration) *SessionService {
	return &SessionService{clock: clock, staleAfter: staleAfter}
}

func (s *SessionService) Now() time.Time {
	return s.clock.Now()
}

func (s *SessionService) Hydrate(stored domain.LocalSession, viewingTopic string) (dto.HydrateOutput, bool) {
	hydrated, ok := domain.Hydrate(stored, viewingTopic, s.clock.Now(), s.staleAfter)
	if !ok {
		return dto.HydrateOutput{}, false
	}
	return dto.HydrateOutput{State: FromLocal(hydrated.Session), Visible: hydrated.Visible}, true
}

func (s *SessionService) HydratePaused(stored domain.LocalSession, viewingTopic string) (dto.HydrateOutput, bool) {
	hydrated, ok := domain.HydratePaused(stored, viewingTopic)
	if !ok {
		return dto.HydrateOutput{}, false
	}
	return dto.HydrateOutput{State: FromLocal(hydrated.Session), Visible: hydrated.Visible}, true
}

// Record builds a full-overwrite row for userID stamped with the next HLC.
func (s *SessionService) Record(userID, deviceID string, state dto.State, last domain.HLC) (domain.ActiveSessionRecord, domain.HLC) {
	now := s.clock.Now()
	seq := domain.NextHLC(now, last, deviceID)
	return domain.ActiveSessionRecord{
		UserID:                 userID,
		IsActive:               state.IsActive,
		TopicID:                state.TopicID,
		TopicTitle:             state.TopicTitle,
		StartTime:              state.StartTime,
		TimeLeft:               state.TimeLeft,
		PlannedDurationSeconds: state.PlannedDurationSeconds,
		ProblemsSolved:         state.ProblemsSolved,
		DeviceID:               deviceID,
		LastUpdated:            now,
		Seq:                    seq.String(),
	}, seq
}

func ToLocal(state dto.State) domain.LocalSession {
	local := domain.LocalSession{
		IsActive:          state.IsActive,
		CurrentTopic:      state.TopicID,
		CurrentTopicTitle: state.TopicTitle,
		TimeLeft:          state.TimeLeft,
		PlannedDuration:   state.PlannedDurationSeconds,
		ProblemsSolved:    state.ProblemsSolved,
	}
	if state.StartTime != nil {
		local.StartTime = state.StartTime.UnixMilli()
	}
	return local
}

func FromLocal(local domain.LocalSession) dto.State {
	state := dto.State{
		IsActive:               local.IsActive,
		TopicID:                local.CurrentTopic,
		TopicTitle:             local.CurrentTopicTitle,
		TimeLeft:               local.TimeLeft,
		PlannedDurationSeconds: local.PlannedDuration,
		ProblemsSolved:         local.ProblemsSolved,
	}
	if local.StartTime > 0 {
		start := time.UnixMilli(local.StartTime).UTC()
		state.StartTime = &start
	}
	return state
}

func StateOf(record domain.ActiveSessionRecord) dto.State {
	return dto.State{
		IsActive:               record.IsActive,
		TopicID:                record.TopicID,
		TopicTitle:             record.TopicTitle,
		StartTime:              record.StartTime,
		TimeLeft:               record.TimeLeft,
		PlannedDurationSeconds: record.PlannedDurationSeconds,
		ProblemsSolved:         record.ProblemsSolved,
	}
}

func ToRecordDTO(record domain.ActiveSessionRecord) dto.Record {
	return dto.Record{
		UserID:      record.UserID,
		State:       StateOf(record),
		DeviceID:    record.DeviceID,
		LastUpdated: record.LastUpdated,
		Seq:         record.Seq,
	}
}
