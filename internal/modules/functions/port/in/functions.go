package in

import (
	"context"

	"dsaboost/internal/modules/functions/domain"
	"dsaboost/internal/modules/functions/dto"
)

// Host is the server side of the hosted functions.
type Host interface {
	Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error)
	SendEmail(ctx context.Context, req domain.EmailRequest) (domain.EmailResponse, error)
}

// Mailer renders the transactional emails and sends them through send-email.
type Mailer interface {
	SendWelcome(ctx context.Context, data dto.WelcomeData) error
	SendTimerComplete(ctx context.Context, data dto.TimerCompleteData) error
	SendDailySummary(ctx context.Context, data dto.DailySummaryData) error
	SendAdminNotification(ctx context.Context, data dto.AdminData) error
}

// Assistant is a chat conversation that keeps its own context.
type Assistant interface {
	Ask(ctx context.Context, message string) (string, error)
	History() []dto.Turn
	Reset()
}
