package usecase

import (
	"context"
	"fmt"
	"time"

	"dsaboost/internal/modules/functions/domain"
	"dsaboost/internal/modules/functions/dto"
	functionsin "dsaboost/internal/modules/functions/port/in"
	functionsout "dsaboost/internal/modules/functions/port/out"
	"dsaboost/internal/modules/functions/service"
	apperrors "dsaboost/internal/platform/errors"
)

type MailerInteractor struct {
	invoker    functionsout.Invoker
	renderer   *service.Renderer
	adminEmail string
}

func NewMailerInteractor(invoker functionsout.Invoker, renderer *service.Renderer, adminEmail string) functionsin.Mailer {
	return &MailerInteractor{invoker: invoker, renderer: renderer, adminEmail: adminEmail}
}

func (m *MailerInteractor) SendWelcome(ctx context.Context, data dto.WelcomeData) error {
	req, err := m.renderer.Welcome(data)
	if err != nil {
		return err
	}
	return m.send(ctx, req)
}

func (m *MailerInteractor) SendTimerComplete(ctx context.Context, data dto.TimerCompleteData) error {
	req, err := m.renderer.TimerComplete(data)
	if err != nil {
		return err
	}
	return m.send(ctx, req)
}

func (m *MailerInteractor) SendDailySummary(ctx context.Context, data dto.DailySummaryData) error {
	if data.Date.IsZero() {
		data.Date = time.Now()
	}
	req, err := m.renderer.DailySummary(data)
	if err != nil {
		return err
	}
	return m.send(ctx, req)
}

func (m *MailerInteractor) SendAdminNotification(ctx context.Context, data dto.AdminData) error {
	if m.adminEmail == "" {
		return fmt.Errorf("%w: admin email", apperrors.ErrNotConfigured)
	}
	if data.SignedUpAt.IsZero() {
		data.SignedUpAt = time.Now()
	}
	req, err := m.renderer.AdminNotification(m.adminEmail, data)
	if err != nil {
		return err
	}
	return m.send(ctx, req)
}

func (m *MailerInteractor) send(ctx context.Context, req domain.EmailRequest) error {
	var out domain.EmailResponse
	if err := m.invoker.Invoke(ctx, domain.FunctionEmail, req, &out); err != nil {
		return fmt.Errorf("send %s email: %w", req.Type, err)
	}
	return nil
}
