package out

import (
	"context"

	"dsaboost/internal/modules/identity/domain"
)

type TokenVerifier interface {
	Verify(token string) (domain.Claims, error)
}

// SessionStore returns apperrors.ErrNotFound when nobody is signed in.
type SessionStore interface {
	Load(ctx context.Context) (domain.Identity, error)
	Save(ctx context.Context, identity domain.Identity) error
	Clear(ctx context.Context) error
}

// PreferenceStore returns apperrors.ErrNotFound for users never seen before.
type PreferenceStore interface {
	Get(ctx context.Context, userID string) (domain.Preferences, error)
	Save(ctx context.Context, userID string, prefs domain.Preferences) error
}
