package bootstrap_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"dsaboost/internal/bootstrap"
	"dsaboost/internal/modules/timer/dto"
	"dsaboost/internal/platform/config"
	apperrors "dsaboost/internal/platform/errors"
)

func newConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.Notify.Desktop = false
	return cfg
}

// run opens a fresh App on cfg's vault, as one CLI invocation would, and
// closes it once fn returns so queued writes reach the store.
func run(t *testing.T, cfg config.Config, fn func(ctx context.Context, app *bootstrap.App)) {
	t.Helper()
	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{LogWriter: io.Discard})
	require.NoError(t, err)
	fn(ctx, app)
	require.NoError(t, app.Close())
}

func TestPausedSessionSurvivesAcrossProcesses(t *testing.T) {
	t.Parallel()
	cfg := newConfig(t)

	var started dto.Snapshot
	run(t, cfg, func(ctx context.Context, app *bootstrap.App) {
		snap, err := app.TimerCLI.Start(ctx, "arrays-hashing", "Arrays & Hashing", 1500)
		require.NoError(t, err)
		require.True(t, snap.IsActive)
		started = snap
	})
	run(t, cfg, func(ctx context.Context, app *bootstrap.App) {
		snap, err := app.TimerCLI.Pause(ctx)
		require.NoError(t, err)
		require.False(t, snap.IsActive)
		require.NotNil(t, snap.StartTime)
		require.True(t, started.StartTime.Equal(*snap.StartTime))
	})
	run(t, cfg, func(ctx context.Context, app *bootstrap.App) {
		out, err := app.SessionCLI.Local(ctx, "")
		require.NoError(t, err)
		require.False(t, out.State.IsActive)
		require.Equal(t, "arrays-hashing", out.State.TopicID)

		snap, err := app.TimerCLI.Resume(ctx)
		require.NoError(t, err)
		require.True(t, snap.IsActive)
		require.True(t, started.StartTime.Equal(*snap.StartTime))
	})
	run(t, cfg, func(ctx context.Context, app *bootstrap.App) {
		result, err := app.TimerCLI.Stop(ctx)
		require.NoError(t, err)
		require.Equal(t, "arrays-hashing", result.TopicID)
		require.Equal(t, dto.TriggerStop, result.Trigger)
	})
	run(t, cfg, func(ctx context.Context, app *bootstrap.App) {
		_, err := app.TimerCLI.Status(ctx)
		require.ErrorIs(t, err, apperrors.ErrNoActiveSession)
		_, err = app.SessionCLI.Local(ctx, "")
		require.ErrorIs(t, err, apperrors.ErrNoActiveSession)
	})
}

func TestPausedSessionCanBeStoppedOrResetLater(t *testing.T) {
	t.Parallel()
	for _, finish := range []string{"stop", "reset"} {
		cfg := newConfig(t)
		run(t, cfg, func(ctx context.Context, app *bootstrap.App) {
			_, err := app.TimerCLI.Start(ctx, "binary-search", "Binary Search", 600)
			require.NoError(t, err)
			_, err = app.TimerCLI.Pause(ctx)
			require.NoError(t, err)
		})
		run(t, cfg, func(ctx context.Context, app *bootstrap.App) {
			if finish == "stop" {
				result, err := app.TimerCLI.Stop(ctx)
				require.NoError(t, err)
				require.Equal(t, "binary-search", result.TopicID)
				return
			}
			snap, err := app.TimerCLI.Reset(ctx)
			require.NoError(t, err)
			require.Nil(t, snap.StartTime)
		})
		run(t, cfg, func(ctx context.Context, app *bootstrap.App) {
			_, err := app.TimerCLI.Resume(ctx)
			require.ErrorIs(t, err, apperrors.ErrNoActiveSession, "after %s", finish)
		})
	}
}
