package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dsaboost/internal/modules/session/domain"
	"dsaboost/internal/modules/session/dto"
	sessionin "dsaboost/internal/modules/session/port/in"
	sessionout "dsaboost/internal/modules/session/port/out"
	"dsaboost/internal/modules/session/service"
	apperrors "dsaboost/internal/platform/errors"
)

type MirrorOptions struct {
	DeviceID string
	Throttle time.Duration
	Logger   *slog.Logger
}

// MirrorInteractor owns the in-memory copy of the user's active-session row.
// Failed reads and writes leave that copy untouched.
type MirrorInteractor struct {
	svc      *service.SessionService
	repo     sessionout.ActiveSessionRepository
	feed     sessionout.ChangeFeed
	legacy   sessionout.LegacyStore
	deviceID string
	throttle time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	current    domain.ActiveSessionRecord
	hasCurrent bool
	lastWrite  time.Time
	lastSeq    domain.HLC
	loaded     map[string]bool
}

func NewMirrorInteractor(svc *service.SessionService, repo sessionout.ActiveSessionRepository, feed sessionout.ChangeFeed, legacy sessionout.LegacyStore, opts MirrorOptions) sessionin.Mirror {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &MirrorInteractor{
		svc:      svc,
		repo:     repo,
		feed:     feed,
		legacy:   legacy,
		deviceID: opts.DeviceID,
		throttle: opts.Throttle,
		logger:   opts.Logger.With("component", "mirror", "device_id", opts.DeviceID),
		loaded:   map[string]bool{},
	}
}

func (m *MirrorInteractor) DeviceID() string { return m.deviceID }

// StartSession overwrites the user's row with a fresh session.
func (m *MirrorInteractor) StartSession(ctx context.Context, userID string, state dto.State) error {
	return m.writeState(ctx, "start_session", userID, state)
}

// Sync is an unthrottled full write, used for pause and resume.
func (m *MirrorInteractor) Sync(ctx context.Context, userID string, state dto.State) error {
	return m.writeState(ctx, "sync", userID, state)
}

// UpdateTimeLeft writes at most once per throttle window; calls inside the
// window only update the in-memory copy. It reports whether it wrote.
func (m *MirrorInteractor) UpdateTimeLeft(ctx context.Context, userID string, timeLeft int) (bool, error) {
	if userID == "" {
		return false, apperrors.ErrNotSignedIn
	}
	m.mu.Lock()
	if !m.hasCurrent || m.current.UserID != userID || !m.current.IsActive {
		m.mu.Unlock()
		return false, apperrors.ErrNoActiveSession
	}
	now := m.svc.Now()
	if !domain.ShouldWrite(m.lastWrite, now, m.throttle) {
		m.current.TimeLeft = timeLeft
		m.mu.Unlock()
		return false, nil
	}
	state := service.StateOf(m.current)
	state.TimeLeft = timeLeft
	m.mu.Unlock()

	if err := m.writeState(ctx, "update_time_left", userID, state); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MirrorInteractor) UpdateProblems(ctx context.Context, userID string, problems int) error {
	if userID == "" {
		return apperrors.ErrNotSignedIn
	}
	m.mu.Lock()
	if !m.hasCurrent || m.current.UserID != userID {
		m.mu.Unlock()
		return apperrors.ErrNoActiveSession
	}
	state := service.StateOf(m.current)
	m.mu.Unlock()
	state.ProblemsSolved = problems
	return m.writeState(ctx, "update_problems", userID, state)
}

// EndSession marks the row inactive and clears topic and time. The row is
// kept for the next session.
func (m *MirrorInteractor) EndSession(ctx context.Context, userID string) error {
	m.mu.Lock()
	planned := m.current.PlannedDurationSeconds
	m.mu.Unlock()
	return m.writeState(ctx, "end_session", userID, dto.State{PlannedDurationSeconds: planned})
}

func (m *MirrorInteractor) Current() (dto.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasCurrent {
		return dto.Record{}, false
	}
	return service.ToRecordDTO(m.current), true
}

// Load fetches the user's row. The first fetch per sign-in promotes a purely
// local session when the backend has no row yet.
func (m *MirrorInteractor) Load(ctx context.Context, userID string) (dto.Record, error) {
	if userID == "" {
		return dto.Record{}, apperrors.ErrNotSignedIn
	}
	record, err := m.repo.Get(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		m.logger.Warn("load active session failed", "op", "load", "user_id", userID, "error", err)
		return dto.Record{}, err
	}

	m.mu.Lock()
	firstLoad := !m.loaded[userID]
	m.loaded[userID] = true
	m.mu.Unlock()

	if errors.Is(err, apperrors.ErrNotFound) {
		if firstLoad {
			return m.migrateLegacy(ctx, userID)
		}
		return dto.Record{}, apperrors.ErrNoActiveSession
	}

	m.mu.Lock()
	m.acceptLocked(record)
	m.mu.Unlock()
	return service.ToRecordDTO(record), nil
}

func (m *MirrorInteractor) migrateLegacy(ctx context.Context, userID string) (dto.Record, error) {
	if m.legacy == nil {
		return dto.Record{}, apperrors.ErrNoActiveSession
	}
	legacy, err := m.legacy.LoadLegacy(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			m.logger.Warn("read legacy session failed", "op", "migrate", "user_id", userID, "error", err)
		}
		return dto.Record{}, apperrors.ErrNoActiveSession
	}
	if !legacy.IsActive {
		return dto.Record{}, apperrors.ErrNoActiveSession
	}
	if err := m.writeState(ctx, "migrate", userID, service.FromLocal(legacy)); err != nil {
		return dto.Record{}, err
	}
	if err := m.legacy.DiscardLegacy(ctx); err != nil {
		m.logger.Warn("discard legacy session failed", "op", "migrate", "user_id", userID, "error", err)
	}
	m.logger.Info("migrated local session", "user_id", userID, "topic_id", legacy.CurrentTopic)
	record, _ := m.Current()
	return record, nil
}

// Subscribe forwards rows written by other devices for userID. Echoes of
// this device and rows older than the last applied one are dropped.
func (m *MirrorInteractor) Subscribe(ctx context.Context, userID string, fn func(dto.Record)) error {
	if userID == "" {
		return apperrors.ErrNotSignedIn
	}
	return m.feed.Subscribe(ctx, userID, func(record domain.ActiveSessionRecord) {
		if record.UserID != userID || record.DeviceID == m.deviceID {
			return
		}
		m.mu.Lock()
		accepted := m.acceptLocked(record)
		m.mu.Unlock()
		if !accepted {
			m.logger.Debug("drop stale remote session", "user_id", userID, "seq", record.Seq)
			return
		}
		fn(service.ToRecordDTO(record))
	})
}

// SignedOut forgets the user's row so the next sign-in loads afresh.
func (m *MirrorInteractor) SignedOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.ActiveSessionRecord{}
	m.hasCurrent = false
	m.lastWrite = time.Time{}
	m.loaded = map[string]bool{}
}

func (m *MirrorInteractor) writeState(ctx context.Context, op, userID string, state dto.State) error {
	if userID == "" {
		return apperrors.ErrNotSignedIn
	}
	m.mu.Lock()
	record, seq := m.svc.Record(userID, m.deviceID, state, m.lastSeq)
	m.lastSeq = seq
	m.mu.Unlock()

	if err := m.repo.Upsert(ctx, record); err != nil {
		m.logger.Warn("write active session failed", "op", op, "user_id", userID, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	if m.acceptLocked(record) {
		m.lastWrite = record.LastUpdated
	}
	m.mu.Unlock()

	if m.feed != nil {
		if err := m.feed.Publish(ctx, record); err != nil {
			m.logger.Warn("publish active session failed", "op", op, "user_id", userID, "error", err)
		}
	}
	m.logger.Debug("wrote active session", "op", op, "user_id", userID, "seq", record.Seq)
	return nil
}

// acceptLocked installs record as the current copy unless a newer one has
// already been applied.
func (m *MirrorInteractor) acceptLocked(record domain.ActiveSessionRecord) bool {
	seq := domain.ParseHLC(record.Seq)
	if m.hasCurrent && m.current.UserID == record.UserID {
		if domain.CompareHLC(seq, domain.ParseHLC(m.current.Seq)) <= 0 {
			return false
		}
	}
	m.current = record
	m.hasCurrent = true
	if domain.CompareHLC(seq, m.lastSeq) > 0 {
		m.lastSeq = seq
	}
	return true
}
