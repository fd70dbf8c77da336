package in

import (
	"context"

	"dsaboost/internal/modules/identity/dto"
)

type Usecase interface {
	SignIn(ctx context.Context, accessToken string) (dto.SignInOutput, error)
	// Current returns apperrors.ErrNotSignedIn when signed out or expired.
	Current(ctx context.Context) (dto.IdentityOutput, error)
	SignOut(ctx context.Context) error
	OnSignOut(fn func(userID string)) (cancel func())
	Preferences(ctx context.Context, userID string) (dto.PreferencesOutput, error)
	UpdatePreferences(ctx context.Context, userID string, input dto.UpdatePreferencesInput) (dto.PreferencesOutput, error)
}
