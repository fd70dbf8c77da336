package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dsaboost/internal/modules/timer/domain"
	"dsaboost/internal/modules/timer/dto"
	timerin "dsaboost/internal/modules/timer/port/in"
	timerout "dsaboost/internal/modules/timer/port/out"
	"dsaboost/internal/modules/timer/service"
	"dsaboost/internal/platform/clock"
	apperrors "dsaboost/internal/platform/errors"
)

// LocalUser owns history and progress written while signed out.
const LocalUser = "local"

type Options struct {
	Clock           clock.Clock
	DefaultDuration int
	AutoComplete    bool
	Loop            *service.TickLoop
	Dispatcher      service.Dispatcher
	// Backends are consulted in order by Restore; put the remote mirror first.
	Backends []timerout.Backend
	History  timerout.HistoryRecorder
	Progress timerout.ProgressRecorder
	Activity timerout.ActivityTracker
	Notifier timerout.Notifier
	Identity timerout.IdentityProvider
	Logger   *slog.Logger
}

type Interactor struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state domain.Session
	// follower is set while the running session was adopted from another
	// process; that process writes ticks and completes it.
	follower bool

	subMu   sync.Mutex
	subs    map[int]func(dto.Snapshot)
	nextSub int
}

func NewInteractor(opts Options) timerin.Usecase {
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = 1500
	}
	if opts.Loop == nil {
		opts.Loop = service.NewTickLoop(nil, time.Second)
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = service.InlineDispatcher{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger = opts.Logger.With("component", "timer")
	ctx, cancel := context.WithCancel(context.Background())
	return &Interactor{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		state:  domain.NewSession(opts.DefaultDuration),
		subs:   map[int]func(dto.Snapshot){},
	}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.Snapshot, error) {
	duration := input.DurationSeconds
	if duration <= 0 {
		duration = i.opts.DefaultDuration
	}

	i.mu.Lock()
	resumed, err := i.state.Start(input.TopicID, input.TopicTitle, duration, i.opts.Clock.Now())
	if err != nil {
		i.mu.Unlock()
		return dto.Snapshot{}, err
	}
	i.follower = false
	i.startLoopLocked()
	snap := toSnapshot(i.state)
	i.mu.Unlock()

	kind := dto.ChangeStarted
	if resumed {
		kind = dto.ChangeResumed
	}
	i.publish(snap)
	i.dispatch(kind, snap)

	if !resumed && i.opts.Activity != nil {
		if err := i.opts.Activity.StartTracking(ctx, snap.TopicID, snap.TopicTitle); err != nil {
			i.opts.Logger.Warn("start activity tracking failed", "op", "start", "error", err)
		}
	}
	return snap, nil
}

func (i *Interactor) Resume(ctx context.Context) (dto.Snapshot, error) {
	i.mu.Lock()
	if !i.state.Started() || i.state.Ended {
		i.mu.Unlock()
		return dto.Snapshot{}, apperrors.ErrNoActiveSession
	}
	input := dto.StartInput{TopicID: i.state.TopicID, TopicTitle: i.state.TopicTitle}
	i.mu.Unlock()
	return i.Start(ctx, input)
}

func (i *Interactor) Pause(_ context.Context) (dto.Snapshot, error) {
	i.mu.Lock()
	if err := i.state.Pause(); err != nil {
		i.mu.Unlock()
		return dto.Snapshot{}, err
	}
	i.follower = false
	i.opts.Loop.Stop()
	snap := toSnapshot(i.state)
	i.mu.Unlock()

	i.publish(snap)
	i.dispatch(dto.ChangePaused, snap)
	return snap, nil
}

func (i *Interactor) Reset(ctx context.Context) (dto.Snapshot, error) {
	i.mu.Lock()
	i.opts.Loop.Stop()
	hadRun := i.state.Started()
	i.state.Reset()
	i.follower = false
	snap := toSnapshot(i.state)
	i.mu.Unlock()

	i.publish(snap)
	i.dispatch(dto.ChangeReset, snap)
	if hadRun && i.opts.Activity != nil {
		if err := i.opts.Activity.StopTracking(ctx, false); err != nil {
			i.opts.Logger.Warn("stop activity tracking failed", "op", "reset", "error", err)
		}
	}
	return snap, nil
}

func (i *Interactor) Tick(ctx context.Context) (dto.Snapshot, error) {
	return i.tick(ctx, 0, false)
}

func (i *Interactor) tick(ctx context.Context, gen uint64, fromLoop bool) (dto.Snapshot, error) {
	i.mu.Lock()
	if fromLoop && !i.opts.Loop.Live(gen) {
		i.mu.Unlock()
		return dto.Snapshot{}, apperrors.ErrNoActiveSession
	}
	if !i.state.IsActive {
		i.mu.Unlock()
		return dto.Snapshot{}, apperrors.ErrNoActiveSession
	}
	reachedZero := i.state.Tick()
	follower := i.follower
	snap := toSnapshot(i.state)
	i.mu.Unlock()

	i.publish(snap)
	if follower {
		return snap, nil
	}
	i.dispatch(dto.ChangeTick, snap)

	if reachedZero && i.opts.AutoComplete {
		if _, err := i.finish(ctx, dto.TriggerCompletion); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
			i.opts.Logger.Warn("auto complete failed", "op", "tick", "error", err)
		}
		return i.Snapshot(), nil
	}
	return snap, nil
}

func (i *Interactor) Stop(ctx context.Context) (dto.Result, error) {
	return i.finish(ctx, dto.TriggerStop)
}

func (i *Interactor) Complete(ctx context.Context) (dto.Result, error) {
	return i.finish(ctx, dto.TriggerCompletion)
}

// finish is the single terminal path shared by stop and completion.
func (i *Interactor) finish(ctx context.Context, trigger dto.Trigger) (dto.Result, error) {
	i.mu.Lock()
	ended, ok := i.state.ClaimTerminal()
	if !ok {
		i.mu.Unlock()
		return dto.Result{}, apperrors.ErrNoActiveSession
	}
	i.opts.Loop.Stop()
	i.state.Reset()
	i.follower = false
	snap := toSnapshot(i.state)
	i.mu.Unlock()

	result := buildResult(ended, trigger, i.opts.Clock.Now())
	i.publish(snap)
	i.dispatch(dto.ChangeEnded, snap)

	signedIn := i.currentUserID(ctx)
	owner := signedIn
	if owner == "" {
		owner = LocalUser
	}
	log := i.opts.Logger.With("op", string(trigger), "user_id", owner, "topic_id", result.TopicID)

	if i.opts.History != nil {
		recorded, err := i.opts.History.Record(ctx, owner, result)
		if err != nil {
			log.Warn("record history failed", "error", err)
		}
		result.HistoryRecorded = recorded
		if err == nil && !recorded && result.ActualMinutes > 0 {
			log.Info("session already recorded elsewhere")
			return result, nil
		}
	}
	if i.opts.Progress != nil && result.ActualMinutes > 0 {
		if err := i.opts.Progress.RecordStudy(ctx, owner, result.TopicID, result.ActualMinutes); err != nil {
			log.Warn("record study time failed", "error", err)
		}
	}
	if i.opts.Activity != nil {
		if err := i.opts.Activity.StopTracking(ctx, trigger == dto.TriggerCompletion); err != nil {
			log.Warn("stop activity tracking failed", "error", err)
		}
	}
	if i.opts.Notifier != nil {
		notifier := i.opts.Notifier
		i.opts.Dispatcher.Go("notify", func(ctx context.Context) {
			if err := notifier.SessionEnded(ctx, signedIn, result); err != nil {
				log.Warn("notify failed", "error", err)
			}
		})
	}
	log.Info("session ended", "actual_minutes", result.ActualMinutes, "overtime_minutes", result.OvertimeMinutes)
	return result, nil
}

func (i *Interactor) SetProblems(_ context.Context, n int) (dto.Snapshot, error) {
	i.mu.Lock()
	if err := i.state.SetProblems(n); err != nil {
		i.mu.Unlock()
		return dto.Snapshot{}, err
	}
	i.follower = false
	snap := toSnapshot(i.state)
	i.mu.Unlock()

	i.publish(snap)
	i.dispatch(dto.ChangeProblems, snap)
	return snap, nil
}

// IncrementProblems adjusts the counter of the current session. A non-empty
// topicID must match the session's topic.
func (i *Interactor) IncrementProblems(ctx context.Context, topicID string, delta int) (dto.Snapshot, error) {
	i.mu.Lock()
	if !i.state.Started() || (topicID != "" && i.state.TopicID != topicID) {
		i.mu.Unlock()
		return dto.Snapshot{}, apperrors.ErrNoActiveSession
	}
	next := i.state.ProblemsSolved + delta
	i.mu.Unlock()
	if next < 0 {
		next = 0
	}
	return i.SetProblems(ctx, next)
}

func (i *Interactor) Snapshot() dto.Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	return toSnapshot(i.state)
}

func (i *Interactor) Subscribe(fn func(dto.Snapshot)) func() {
	i.subMu.Lock()
	defer i.subMu.Unlock()
	id := i.nextSub
	i.nextSub++
	i.subs[id] = fn
	return func() {
		i.subMu.Lock()
		delete(i.subs, id)
		i.subMu.Unlock()
	}
}

// Restore adopts the first session a backend can produce. A session for a
// topic other than viewingTopic is reported but not adopted.
func (i *Interactor) Restore(ctx context.Context, viewingTopic string) (dto.RestoreOutput, error) {
	for _, backend := range i.opts.Backends {
		out, err := backend.Load(ctx, viewingTopic)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNoActiveSession) && !errors.Is(err, apperrors.ErrNotSignedIn) {
				i.opts.Logger.Warn("restore failed", "op", "restore", "backend", backend.Name(), "error", err)
			}
			continue
		}
		out.Source = backend.Name()
		if !out.Visible {
			return out, nil
		}

		i.mu.Lock()
		i.adoptLocked(out.Snapshot)
		i.follower = false
		overdue := i.state.IsActive && i.state.TimeLeft <= 0
		snap := toSnapshot(i.state)
		i.mu.Unlock()
		i.publish(snap)

		if overdue && i.opts.AutoComplete {
			if _, err := i.finish(ctx, dto.TriggerCompletion); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
				return dto.RestoreOutput{}, err
			}
		}
		out.Snapshot = i.Snapshot()
		return out, nil
	}
	return dto.RestoreOutput{}, apperrors.ErrNoActiveSession
}

// Watch subscribes to every backend; states written elsewhere replace the
// local one wholesale and are not echoed back.
func (i *Interactor) Watch(ctx context.Context) error {
	watched := 0
	for _, backend := range i.opts.Backends {
		name := backend.Name()
		err := backend.Watch(ctx, func(snap dto.Snapshot) {
			i.applyExternal(name, snap)
		})
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotSignedIn) {
				i.opts.Logger.Warn("watch failed", "op", "watch", "backend", name, "error", err)
			}
			continue
		}
		watched++
	}
	if watched == 0 && len(i.opts.Backends) > 0 {
		return apperrors.ErrNotConfigured
	}
	return nil
}

func (i *Interactor) applyExternal(source string, snap dto.Snapshot) {
	i.mu.Lock()
	if sameSnapshot(toSnapshot(i.state), snap) {
		i.mu.Unlock()
		return
	}
	i.adoptLocked(snap)
	i.follower = i.state.IsActive
	next := toSnapshot(i.state)
	i.mu.Unlock()
	i.opts.Logger.Debug("applied external session", "backend", source, "active", next.IsActive)
	i.publish(next)
}

func (i *Interactor) Close() error {
	i.opts.Loop.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), service.DefaultDrainTimeout)
	defer cancel()
	err := i.opts.Dispatcher.Close(ctx)
	i.cancel()
	return err
}

func (i *Interactor) adoptLocked(snap dto.Snapshot) {
	i.state = fromSnapshot(snap, i.opts.DefaultDuration)
	if i.state.IsActive {
		i.startLoopLocked()
	} else {
		i.opts.Loop.Stop()
	}
}

func (i *Interactor) startLoopLocked() {
	if !i.state.IsActive {
		return
	}
	i.opts.Loop.Start(i.ctx, func(gen uint64) {
		_, _ = i.tick(i.ctx, gen, true)
	})
}

func (i *Interactor) publish(snap dto.Snapshot) {
	i.subMu.Lock()
	fns := make([]func(dto.Snapshot), 0, len(i.subs))
	for _, fn := range i.subs {
		fns = append(fns, fn)
	}
	i.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (i *Interactor) dispatch(kind dto.ChangeKind, snap dto.Snapshot) {
	change := dto.Change{Kind: kind, Snapshot: snap}
	for _, backend := range i.opts.Backends {
		backend := backend
		i.opts.Dispatcher.Go(backend.Name(), func(ctx context.Context) {
			if err := backend.Apply(ctx, change); err != nil && !errors.Is(err, apperrors.ErrNotSignedIn) {
				i.opts.Logger.Warn("backend write failed", "op", string(kind), "backend", backend.Name(), "error", err)
			}
		})
	}
}

func (i *Interactor) currentUserID(ctx context.Context) string {
	if i.opts.Identity == nil {
		return ""
	}
	return i.opts.Identity.CurrentUserID(ctx)
}

// buildResult leaves ActualMinutes at zero for runs shorter than a second.
func buildResult(ended domain.Session, trigger dto.Trigger, now time.Time) dto.Result {
	actual := 0
	if elapsed := now.Sub(ended.StartTime); elapsed >= time.Second {
		actual = clock.CeilMinutes(elapsed)
	}
	planned := clock.CeilSecondsToMinutes(ended.PlannedDurationSeconds)
	overtime := actual - planned
	if overtime < 0 {
		overtime = 0
	}
	return dto.Result{
		Trigger:                trigger,
		TopicID:                ended.TopicID,
		TopicTitle:             ended.TopicTitle,
		StartTime:              ended.StartTime,
		EndTime:                now,
		PlannedDurationSeconds: ended.PlannedDurationSeconds,
		ActualDurationSeconds:  ended.ElapsedSeconds(now),
		ActualMinutes:          actual,
		PlannedMinutes:         planned,
		OvertimeMinutes:        overtime,
		ProblemsSolved:         ended.ProblemsSolved,
	}
}

func toSnapshot(s domain.Session) dto.Snapshot {
	snap := dto.Snapshot{
		IsActive:               s.IsActive,
		TopicID:                s.TopicID,
		TopicTitle:             s.TopicTitle,
		TimeLeft:               s.TimeLeft,
		PlannedDurationSeconds: s.PlannedDurationSeconds,
		ProblemsSolved:         s.ProblemsSolved,
		OvertimeMinutes:        s.OvertimeMinutes(),
	}
	if s.Started() {
		start := s.StartTime
		snap.StartTime = &start
	}
	return snap
}

func sameSnapshot(a, b dto.Snapshot) bool {
	if (a.StartTime == nil) != (b.StartTime == nil) {
		return false
	}
	if a.StartTime != nil && !a.StartTime.Equal(*b.StartTime) {
		return false
	}
	a.StartTime, b.StartTime = nil, nil
	return a == b
}

func fromSnapshot(snap dto.Snapshot, defaultDuration int) domain.Session {
	planned := snap.PlannedDurationSeconds
	if planned <= 0 {
		planned = defaultDuration
	}
	s := domain.Session{
		IsActive:               snap.IsActive,
		TopicID:                snap.TopicID,
		TopicTitle:             snap.TopicTitle,
		TimeLeft:               snap.TimeLeft,
		PlannedDurationSeconds: planned,
		ProblemsSolved:         snap.ProblemsSolved,
	}
	if snap.StartTime != nil {
		s.StartTime = *snap.StartTime
	}
	if !s.Started() {
		return domain.NewSession(planned)
	}
	return s
}
