package out

import (
	"context"

	"dsaboost/internal/modules/notify/dto"
)

type Desktop interface {
	Notify(ctx context.Context, summary, body string) error
}

type Mailer interface {
	SendTimerComplete(ctx context.Context, email dto.TimerEmail) error
	SendWelcome(ctx context.Context, to, name string) error
	SendAdminNotification(ctx context.Context, email, name string) error
	SendDailySummary(ctx context.Context, email dto.SummaryEmail) error
}

// Recipients resolves the address and opt-in of a user. It returns
// apperrors.ErrNotSignedIn when the user is not the signed-in identity.
type Recipients interface {
	Recipient(ctx context.Context, userID string) (dto.Recipient, error)
}
