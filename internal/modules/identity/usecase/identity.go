package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"dsaboost/internal/modules/identity/domain"
	"dsaboost/internal/modules/identity/dto"
	identityin "dsaboost/internal/modules/identity/port/in"
	identityout "dsaboost/internal/modules/identity/port/out"
	"dsaboost/internal/platform/clock"
	apperrors "dsaboost/internal/platform/errors"
)

type Interactor struct {
	clock    clock.Clock
	verifier identityout.TokenVerifier
	sessions identityout.SessionStore
	prefs    identityout.PreferenceStore
	logger   *slog.Logger

	mu        sync.Mutex
	listeners map[int]func(string)
	nextID    int
}

// NewInteractor accepts a nil verifier when no identity provider is
// configured; SignIn then fails with apperrors.ErrNotConfigured.
func NewInteractor(clk clock.Clock, verifier identityout.TokenVerifier, sessions identityout.SessionStore, prefs identityout.PreferenceStore, logger *slog.Logger) identityin.Usecase {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactor{
		clock:     clk,
		verifier:  verifier,
		sessions:  sessions,
		prefs:     prefs,
		logger:    logger.With("component", "identity"),
		listeners: map[int]func(string){},
	}
}

func (i *Interactor) SignIn(ctx context.Context, accessToken string) (dto.SignInOutput, error) {
	if i.verifier == nil {
		return dto.SignInOutput{}, fmt.Errorf("%w: identity.jwt_secret is empty", apperrors.ErrNotConfigured)
	}
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return dto.SignInOutput{}, fmt.Errorf("%w: access token is required", apperrors.ErrInvalidInput)
	}
	claims, err := i.verifier.Verify(token)
	if err != nil {
		return dto.SignInOutput{}, err
	}
	identity := domain.Identity{
		UserID:      claims.Subject,
		Email:       claims.Email,
		FullName:    claims.FullName,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt,
		SignedInAt:  i.clock.Now(),
	}

	previous, err := i.sessions.Load(ctx)
	if err == nil && previous.UserID != identity.UserID {
		i.notifySignOut(previous.UserID)
	}
	if err := i.sessions.Save(ctx, identity); err != nil {
		return dto.SignInOutput{}, err
	}

	first := false
	if _, err := i.prefs.Get(ctx, identity.UserID); errors.Is(err, apperrors.ErrNotFound) {
		first = true
		if err := i.prefs.Save(ctx, identity.UserID, domain.DefaultPreferences()); err != nil {
			return dto.SignInOutput{}, err
		}
	} else if err != nil {
		return dto.SignInOutput{}, err
	}
	i.logger.Info("signed in", "user_id", identity.UserID, "first_sign_in", first)
	return dto.SignInOutput{Identity: toOutput(identity), FirstSignIn: first}, nil
}

func (i *Interactor) Current(ctx context.Context) (dto.IdentityOutput, error) {
	identity, err := i.sessions.Load(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return dto.IdentityOutput{}, apperrors.ErrNotSignedIn
	}
	if err != nil {
		return dto.IdentityOutput{}, err
	}
	if identity.Expired(i.clock.Now()) {
		return dto.IdentityOutput{}, fmt.Errorf("%w: session expired", apperrors.ErrNotSignedIn)
	}
	return toOutput(identity), nil
}

func (i *Interactor) SignOut(ctx context.Context) error {
	identity, err := i.sessions.Load(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := i.sessions.Clear(ctx); err != nil {
		return err
	}
	i.notifySignOut(identity.UserID)
	return nil
}

func (i *Interactor) OnSignOut(fn func(userID string)) func() {
	i.mu.Lock()
	defer i.mu.Unlock()
	id := i.nextID
	i.nextID++
	i.listeners[id] = fn
	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		delete(i.listeners, id)
	}
}

func (i *Interactor) Preferences(ctx context.Context, userID string) (dto.PreferencesOutput, error) {
	prefs, err := i.prefs.Get(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return toPrefsOutput(domain.DefaultPreferences()), nil
	}
	if err != nil {
		return dto.PreferencesOutput{}, err
	}
	return toPrefsOutput(prefs), nil
}

func (i *Interactor) UpdatePreferences(ctx context.Context, userID string, input dto.UpdatePreferencesInput) (dto.PreferencesOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return dto.PreferencesOutput{}, fmt.Errorf("%w: user is required", apperrors.ErrInvalidInput)
	}
	prefs, err := i.prefs.Get(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		prefs = domain.DefaultPreferences()
	} else if err != nil {
		return dto.PreferencesOutput{}, err
	}
	if input.EmailNotifications != nil {
		prefs.EmailNotifications = *input.EmailNotifications
	}
	if input.DefaultTimerDuration != nil {
		if *input.DefaultTimerDuration <= 0 {
			return dto.PreferencesOutput{}, fmt.Errorf("%w: timer duration must be positive", apperrors.ErrInvalidInput)
		}
		prefs.DefaultTimerDuration = *input.DefaultTimerDuration
	}
	if input.BreakDuration != nil {
		if *input.BreakDuration < 0 {
			return dto.PreferencesOutput{}, fmt.Errorf("%w: break duration must not be negative", apperrors.ErrInvalidInput)
		}
		prefs.BreakDuration = *input.BreakDuration
	}
	if err := i.prefs.Save(ctx, userID, prefs); err != nil {
		return dto.PreferencesOutput{}, err
	}
	return toPrefsOutput(prefs), nil
}

func (i *Interactor) notifySignOut(userID string) {
	i.mu.Lock()
	fns := make([]func(string), 0, len(i.listeners))
	for _, fn := range i.listeners {
		fns = append(fns, fn)
	}
	i.mu.Unlock()
	for _, fn := range fns {
		fn(userID)
	}
}

func toOutput(identity domain.Identity) dto.IdentityOutput {
	return dto.IdentityOutput{
		UserID:      identity.UserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName(),
		ExpiresAt:   identity.ExpiresAt,
	}
}

func toPrefsOutput(prefs domain.Preferences) dto.PreferencesOutput {
	return dto.PreferencesOutput{
		EmailNotifications:   prefs.EmailNotifications,
		DefaultTimerDuration: prefs.DefaultTimerDuration,
		BreakDuration:        prefs.BreakDuration,
	}
}
