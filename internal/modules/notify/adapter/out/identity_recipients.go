package out

import (
	"context"
	"fmt"

	identityin "dsaboost/internal/modules/identity/port/in"
	"dsaboost/internal/modules/notify/dto"
	notifyout "dsaboost/internal/modules/notify/port/out"
	apperrors "dsaboost/internal/platform/errors"
)

// IdentityRecipients only knows the address of the signed-in user.
type IdentityRecipients struct {
	identity identityin.Usecase
}

func NewIdentityRecipients(identity identityin.Usecase) notifyout.Recipients {
	return &IdentityRecipients{identity: identity}
}

func (r *IdentityRecipients) Recipient(ctx context.Context, userID string) (dto.Recipient, error) {
	current, err := r.identity.Current(ctx)
	if err != nil {
		return dto.Recipient{}, err
	}
	if current.UserID != userID {
		return dto.Recipient{}, fmt.Errorf("%w: %s is not the signed-in user", apperrors.ErrNotSignedIn, userID)
	}
	prefs, err := r.identity.Preferences(ctx, userID)
	if err != nil {
		return dto.Recipient{}, fmt.Errorf("load preferences: %w", err)
	}
	return dto.Recipient{
		Email:              current.Email,
		Name:               current.DisplayName,
		EmailNotifications: prefs.EmailNotifications,
	}, nil
}
