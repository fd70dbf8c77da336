package out

import (
	"context"
	"errors"
	"time"

	sessiondto "dsaboost/internal/modules/session/dto"
	sessionin "dsaboost/internal/modules/session/port/in"
	"dsaboost/internal/modules/timer/dto"
	timerout "dsaboost/internal/modules/timer/port/out"
	"dsaboost/internal/platform/clock"
	apperrors "dsaboost/internal/platform/errors"
)

// LocalBackend persists the timer in the vault-local session store. A paused
// session is parked under its own key so a later process can resume or stop
// it.
type LocalBackend struct {
	store sessionin.LocalStore
}

func NewLocalBackend(store sessionin.LocalStore) timerout.Backend {
	return &LocalBackend{store: store}
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) Apply(ctx context.Context, change dto.Change) error {
	state := toState(change.Snapshot)
	if err := b.store.Persist(ctx, state); err != nil {
		return err
	}
	switch change.Kind {
	case dto.ChangePaused:
		return b.store.Park(ctx, state)
	case dto.ChangeProblems:
		if !state.IsActive {
			return b.store.Park(ctx, state)
		}
		return nil
	case dto.ChangeStarted, dto.ChangeResumed, dto.ChangeEnded, dto.ChangeReset:
		return b.store.Park(ctx, sessiondto.State{})
	default:
		return nil
	}
}

func (b *LocalBackend) Load(ctx context.Context, viewingTopic string) (dto.RestoreOutput, error) {
	out, err := b.store.Hydrate(ctx, viewingTopic)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		out, err = b.store.Parked(ctx, viewingTopic)
	}
	if err != nil {
		return dto.RestoreOutput{}, err
	}
	return dto.RestoreOutput{Snapshot: toSnapshot(out.State), Visible: out.Visible}, nil
}

func (b *LocalBackend) Watch(ctx context.Context, fn func(dto.Snapshot)) error {
	return b.store.OnExternalChange(ctx, func(state sessiondto.State) {
		fn(toSnapshot(state))
	})
}

// MirrorBackend mirrors the timer to the signed-in user's backend row.
type MirrorBackend struct {
	mirror   sessionin.Mirror
	identity timerout.IdentityProvider
	clock    clock.Clock
}

func NewMirrorBackend(mirror sessionin.Mirror, identity timerout.IdentityProvider, clk clock.Clock) timerout.Backend {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &MirrorBackend{mirror: mirror, identity: identity, clock: clk}
}

func (b *MirrorBackend) Name() string { return "remote" }

func (b *MirrorBackend) Apply(ctx context.Context, change dto.Change) error {
	userID := b.identity.CurrentUserID(ctx)
	if userID == "" {
		return apperrors.ErrNotSignedIn
	}
	state := toState(change.Snapshot)
	switch change.Kind {
	case dto.ChangeStarted:
		return b.mirror.StartSession(ctx, userID, state)
	case dto.ChangeTick:
		_, err := b.mirror.UpdateTimeLeft(ctx, userID, state.TimeLeft)
		if errors.Is(err, apperrors.ErrNoActiveSession) && state.IsActive {
			return b.mirror.Sync(ctx, userID, state)
		}
		return err
	case dto.ChangeProblems:
		err := b.mirror.UpdateProblems(ctx, userID, state.ProblemsSolved)
		if errors.Is(err, apperrors.ErrNoActiveSession) {
			return b.mirror.Sync(ctx, userID, state)
		}
		return err
	case dto.ChangePaused, dto.ChangeResumed:
		return b.mirror.Sync(ctx, userID, state)
	case dto.ChangeEnded, dto.ChangeReset:
		return b.mirror.EndSession(ctx, userID)
	default:
		return nil
	}
}

// Load adopts the remote row. An active row gets its TimeLeft recomputed
// from StartTime because the stored value can lag by a throttle window.
func (b *MirrorBackend) Load(ctx context.Context, viewingTopic string) (dto.RestoreOutput, error) {
	userID := b.identity.CurrentUserID(ctx)
	if userID == "" {
		return dto.RestoreOutput{}, apperrors.ErrNotSignedIn
	}
	record, err := b.mirror.Load(ctx, userID)
	if err != nil {
		return dto.RestoreOutput{}, err
	}
	state := record.State
	if state.StartTime == nil || state.TopicID == "" {
		return dto.RestoreOutput{}, apperrors.ErrNoActiveSession
	}
	if state.IsActive && state.PlannedDurationSeconds > 0 {
		elapsed := b.clock.Now().Sub(*state.StartTime)
		if elapsed > 0 {
			state.TimeLeft = state.PlannedDurationSeconds - int(elapsed/time.Second)
		}
	}
	visible := viewingTopic == "" || viewingTopic == state.TopicID
	return dto.RestoreOutput{Snapshot: toSnapshot(state), Visible: visible}, nil
}

func (b *MirrorBackend) Watch(ctx context.Context, fn func(dto.Snapshot)) error {
	userID := b.identity.CurrentUserID(ctx)
	if userID == "" {
		return apperrors.ErrNotSignedIn
	}
	return b.mirror.Subscribe(ctx, userID, func(record sessiondto.Record) {
		fn(toSnapshot(record.State))
	})
}

func toState(s dto.Snapshot) sessiondto.State {
	return sessiondto.State{
		IsActive:               s.IsActive,
		TopicID:                s.TopicID,
		TopicTitle:             s.TopicTitle,
		StartTime:              s.StartTime,
		TimeLeft:               s.TimeLeft,
		PlannedDurationSeconds: s.PlannedDurationSeconds,
		ProblemsSolved:         s.ProblemsSolved,
	}
}

func toSnapshot(s sessiondto.State) dto.Snapshot {
	snap := dto.Snapshot{
		IsActive:               s.IsActive,
		TopicID:                s.TopicID,
		TopicTitle:             s.TopicTitle,
		StartTime:              s.StartTime,
		TimeLeft:               s.TimeLeft,
		PlannedDurationSeconds: s.PlannedDurationSeconds,
		ProblemsSolved:         s.ProblemsSolved,
	}
	if s.TimeLeft < 0 {
		snap.OvertimeMinutes = clock.CeilSecondsToMinutes(-s.TimeLeft)
	}
	return snap
}
