package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dsaboost/internal/modules/notify/domain"
	"dsaboost/internal/modules/notify/dto"
	notifyin "dsaboost/internal/modules/notify/port/in"
	notifyout "dsaboost/internal/modules/notify/port/out"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/platform/ratelimit"
)

type Options struct {
	Policy     domain.Policy
	Desktop    notifyout.Desktop
	Mailer     notifyout.Mailer
	Recipients notifyout.Recipients
	// Limiter is keyed by recipient address; nil sends every email.
	Limiter *ratelimit.KeyedRateLimiter
	Logger  *slog.Logger
}

type Interactor struct {
	opts Options
}

// NewInteractor treats a nil Desktop or Mailer as a disabled channel.
func NewInteractor(opts Options) notifyin.Usecase {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger = opts.Logger.With("component", "notify")
	return &Interactor{opts: opts}
}

func (i *Interactor) SessionEnded(ctx context.Context, input dto.SessionEndedInput) error {
	ending := domain.Ending{
		Completed:       input.Completed,
		TopicTitle:      input.TopicTitle,
		ActualMinutes:   input.ActualMinutes,
		PlannedMinutes:  input.PlannedMinutes,
		OvertimeMinutes: input.OvertimeMinutes,
		ProblemsSolved:  input.ProblemsSolved,
	}
	var errs []error
	if i.opts.Desktop != nil && i.opts.Policy.WantsDesktop(ending) {
		summary, body := domain.DesktopMessage(ending)
		if err := i.opts.Desktop.Notify(ctx, summary, body); err != nil {
			errs = append(errs, fmt.Errorf("desktop notification: %w", err))
		}
	}
	if err := i.emailSession(ctx, input.UserID, ending); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (i *Interactor) emailSession(ctx context.Context, userID string, ending domain.Ending) error {
	if i.opts.Mailer == nil || i.opts.Recipients == nil || userID == "" {
		return nil
	}
	recipient, err := i.opts.Recipients.Recipient(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotSignedIn) {
			return nil
		}
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if recipient.Email == "" || !i.opts.Policy.WantsEmail(ending, recipient.EmailNotifications) {
		return nil
	}
	if !i.allow(recipient.Email) {
		i.opts.Logger.Info("session email skipped", "reason", "rate limited", "user_id", userID)
		return nil
	}
	err = i.opts.Mailer.SendTimerComplete(ctx, dto.TimerEmail{
		To:              recipient.Email,
		Name:            recipient.Name,
		DurationMinutes: ending.ActualMinutes,
		ProblemsSolved:  ending.ProblemsSolved,
		TopicTitle:      ending.TopicTitle,
		OvertimeMinutes: ending.OvertimeMinutes,
	})
	if err != nil {
		return fmt.Errorf("session email: %w", err)
	}
	return nil
}

// Welcome greets a first-time user and tells the admin about the sign-up.
func (i *Interactor) Welcome(ctx context.Context, input dto.WelcomeInput) error {
	if input.Email == "" {
		return fmt.Errorf("%w: email is required", apperrors.ErrInvalidInput)
	}
	if i.opts.Mailer == nil {
		return nil
	}
	var errs []error
	if i.allow(input.Email) {
		if err := i.opts.Mailer.SendWelcome(ctx, input.Email, input.Name); err != nil {
			errs = append(errs, fmt.Errorf("welcome email: %w", err))
		}
	}
	if err := i.opts.Mailer.SendAdminNotification(ctx, input.Email, input.Name); err != nil && !errors.Is(err, apperrors.ErrNotConfigured) {
		errs = append(errs, fmt.Errorf("admin notification: %w", err))
	}
	return errors.Join(errs...)
}

func (i *Interactor) DailySummary(ctx context.Context, input dto.DailySummaryInput) (bool, error) {
	if i.opts.Mailer == nil || i.opts.Recipients == nil {
		return false, fmt.Errorf("%w: email delivery", apperrors.ErrNotConfigured)
	}
	recipient, err := i.opts.Recipients.Recipient(ctx, input.UserID)
	if err != nil {
		return false, fmt.Errorf("resolve recipient: %w", err)
	}
	if recipient.Email == "" || !recipient.EmailNotifications {
		i.opts.Logger.Info("daily summary skipped", "reason", "opted out", "user_id", input.UserID)
		return false, nil
	}
	if !i.allow(recipient.Email) {
		i.opts.Logger.Info("daily summary skipped", "reason", "rate limited", "user_id", input.UserID)
		return false, nil
	}
	err = i.opts.Mailer.SendDailySummary(ctx, dto.SummaryEmail{
		To:             recipient.Email,
		Name:           recipient.Name,
		Date:           input.Date,
		ProblemsSolved: input.ProblemsSolved,
		StudyMinutes:   input.StudyMinutes,
		TopicsStudied:  input.TopicsStudied,
		Streak:         input.Streak,
	})
	if err != nil {
		return false, fmt.Errorf("daily summary email: %w", err)
	}
	return true, nil
}

func (i *Interactor) allow(recipient string) bool {
	return i.opts.Limiter == nil || i.opts.Limiter.Allow(recipient)
}
