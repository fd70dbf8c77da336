package out

import (
	"context"

	functionsdto "dsaboost/internal/modules/functions/dto"
	functionsin "dsaboost/internal/modules/functions/port/in"
	"dsaboost/internal/modules/notify/dto"
	notifyout "dsaboost/internal/modules/notify/port/out"
)

type FunctionsMailer struct {
	mailer functionsin.Mailer
}

func NewFunctionsMailer(mailer functionsin.Mailer) notifyout.Mailer {
	return &FunctionsMailer{mailer: mailer}
}

func (m *FunctionsMailer) SendTimerComplete(ctx context.Context, email dto.TimerEmail) error {
	return m.mailer.SendTimerComplete(ctx, functionsdto.TimerCompleteData{
		To:             email.To,
		UserName:       nameOr(email.Name),
		DurationMin:    email.DurationMinutes,
		ProblemsSolved: email.ProblemsSolved,
		TopicStudied:   email.TopicTitle,
		OvertimeMin:    email.OvertimeMinutes,
	})
}

func (m *FunctionsMailer) SendWelcome(ctx context.Context, to, name string) error {
	return m.mailer.SendWelcome(ctx, functionsdto.WelcomeData{To: to, UserName: nameOr(name)})
}

func (m *FunctionsMailer) SendAdminNotification(ctx context.Context, email, name string) error {
	return m.mailer.SendAdminNotification(ctx, functionsdto.AdminData{UserName: nameOr(name), UserEmail: email})
}

func (m *FunctionsMailer) SendDailySummary(ctx context.Context, email dto.SummaryEmail) error {
	return m.mailer.SendDailySummary(ctx, functionsdto.DailySummaryData{
		To:             email.To,
		UserName:       nameOr(email.Name),
		Date:           email.Date,
		ProblemsSolved: email.ProblemsSolved,
		StudyMinutes:   email.StudyMinutes,
		TopicsStudied:  email.TopicsStudied,
		Streak:         email.Streak,
	})
}

func nameOr(name string) string {
	if name == "" {
		return "Student"
	}
	return name
}
