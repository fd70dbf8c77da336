package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"dsaboost/internal/modules/session/domain"
	"dsaboost/internal/modules/session/dto"
	sessionin "dsaboost/internal/modules/session/port/in"
	sessionout "dsaboost/internal/modules/session/port/out"
	"dsaboost/internal/modules/session/service"
	apperrors "dsaboost/internal/platform/errors"
)

var (
	_ sessionin.LocalStore   = (*LocalInteractor)(nil)
	_ sessionout.LegacyStore = (*LocalInteractor)(nil)
)

type LocalInteractor struct {
	svc    *service.SessionService
	kv     sessionout.KeyValue
	logger *slog.Logger
}

// NewLocalInteractor also satisfies the mirror's LegacyStore: the legacy session
// is the same key.
func NewLocalInteractor(svc *service.SessionService, kv sessionout.KeyValue, logger *slog.Logger) *LocalInteractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalInteractor{svc: svc, kv: kv, logger: logger.With("component", "local_session")}
}

// Persist keeps the key only while the session is active.
func (i *LocalInteractor) Persist(ctx context.Context, state dto.State) error {
	if !state.IsActive {
		return i.kv.Remove(ctx, domain.SessionKey)
	}
	payload, err := json.Marshal(service.ToLocal(state))
	if err != nil {
		return fmt.Errorf("marshal local session: %w", err)
	}
	return i.kv.Set(ctx, domain.SessionKey, payload)
}

func (i *LocalInteractor) Park(ctx context.Context, state dto.State) error {
	if state.IsActive || state.StartTime == nil || state.TopicID == "" {
		return i.kv.Remove(ctx, domain.PausedKey)
	}
	payload, err := json.Marshal(service.ToLocal(state))
	if err != nil {
		return fmt.Errorf("marshal paused session: %w", err)
	}
	return i.kv.Set(ctx, domain.PausedKey, payload)
}

func (i *LocalInteractor) Parked(ctx context.Context, viewingTopic string) (dto.HydrateOutput, error) {
	stored, err := i.readKey(ctx, domain.PausedKey)
	if err != nil {
		return dto.HydrateOutput{}, err
	}
	out, ok := i.svc.HydratePaused(stored, viewingTopic)
	if !ok {
		return dto.HydrateOutput{}, apperrors.ErrNoActiveSession
	}
	return out, nil
}

func (i *LocalInteractor) Hydrate(ctx context.Context, viewingTopic string) (dto.HydrateOutput, error) {
	stored, err := i.read(ctx)
	if err != nil {
		return dto.HydrateOutput{}, err
	}
	out, ok := i.svc.Hydrate(stored, viewingTopic)
	if !ok {
		return dto.HydrateOutput{}, apperrors.ErrNoActiveSession
	}
	return out, nil
}

// OnExternalChange delivers sessions written by other processes as stored.
// A removed running key arrives as an inactive state, as does a removed
// paused key unless a running session replaced it.
func (i *LocalInteractor) OnExternalChange(ctx context.Context, fn func(dto.State)) error {
	return i.kv.Watch(ctx, func(key string, value []byte) {
		if key != domain.SessionKey && key != domain.PausedKey {
			return
		}
		if value == nil {
			if key == domain.PausedKey {
				if _, err := i.kv.Get(ctx, domain.SessionKey); err == nil {
					return
				}
			}
			fn(dto.State{})
			return
		}
		stored := domain.LocalSession{}
		if err := json.Unmarshal(value, &stored); err != nil {
			i.logger.Warn("ignore malformed external session", "key", key, "error", err)
			return
		}
		fn(service.FromLocal(stored))
	})
}

func (i *LocalInteractor) LoadLegacy(ctx context.Context) (domain.LocalSession, error) {
	return i.read(ctx)
}

func (i *LocalInteractor) DiscardLegacy(ctx context.Context) error {
	return i.kv.Remove(ctx, domain.SessionKey)
}

func (i *LocalInteractor) read(ctx context.Context) (domain.LocalSession, error) {
	return i.readKey(ctx, domain.SessionKey)
}

func (i *LocalInteractor) readKey(ctx context.Context, key string) (domain.LocalSession, error) {
	raw, err := i.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.LocalSession{}, apperrors.ErrNoActiveSession
		}
		return domain.LocalSession{}, err
	}
	stored := domain.LocalSession{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.LocalSession{}, fmt.Errorf("decode local session: %w", err)
	}
	return stored, nil
}
