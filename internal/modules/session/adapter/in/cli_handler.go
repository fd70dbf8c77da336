package in

import (
	"context"
	"errors"

	sessiondto "dsaboost/internal/modules/session/dto"
	sessionin "dsaboost/internal/modules/session/port/in"
	apperrors "dsaboost/internal/platform/errors"
)

type CLIHandler struct {
	local  sessionin.LocalStore
	mirror sessionin.Mirror
}

// NewCLIHandler accepts a nil mirror when no backend is configured.
func NewCLIHandler(local sessionin.LocalStore, mirror sessionin.Mirror) CLIHandler {
	return CLIHandler{local: local, mirror: mirror}
}

// Local reports the running session, or the paused one when none runs.
func (h CLIHandler) Local(ctx context.Context, viewingTopic string) (sessiondto.HydrateOutput, error) {
	out, err := h.local.Hydrate(ctx, viewingTopic)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return h.local.Parked(ctx, viewingTopic)
	}
	return out, err
}

func (h CLIHandler) Remote(ctx context.Context, userID string) (sessiondto.Record, error) {
	if h.mirror == nil {
		return sessiondto.Record{}, apperrors.ErrNotConfigured
	}
	return h.mirror.Load(ctx, userID)
}

func (h CLIHandler) DeviceID() string {
	if h.mirror == nil {
		return ""
	}
	return h.mirror.DeviceID()
}
