package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"dsaboost/internal/modules/functions/domain"
	functionsin "dsaboost/internal/modules/functions/port/in"
	functionsout "dsaboost/internal/modules/functions/port/out"
	"dsaboost/internal/modules/functions/service"
	apperrors "dsaboost/internal/platform/errors"
)

type HostOptions struct {
	Model     string
	Provider  functionsout.CompletionProvider
	Transport functionsout.MailTransport
	Validator *service.Validator
	Logger    *slog.Logger
}

type HostInteractor struct {
	opts HostOptions
}

// NewHostInteractor accepts nil Provider or Transport; the matching function
// then answers with apperrors.ErrNotConfigured.
func NewHostInteractor(opts HostOptions) functionsin.Host {
	if opts.Model == "" {
		opts.Model = domain.DefaultModel
	}
	if opts.Validator == nil {
		opts.Validator = service.NewValidator()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger = opts.Logger.With("component", "functions")
	return &HostInteractor{opts: opts}
}

func (h *HostInteractor) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if err := h.opts.Validator.Validate(req); err != nil {
		return domain.ChatResponse{}, err
	}
	if h.opts.Provider == nil {
		return domain.ChatResponse{}, fmt.Errorf("%w: OPENAI_API_KEY is not set", apperrors.ErrNotConfigured)
	}
	reply, err := h.opts.Provider.Complete(ctx, functionsout.CompletionRequest{
		Model:       h.opts.Model,
		Messages:    domain.BuildMessages(req),
		MaxTokens:   domain.DefaultMaxTokens,
		Temperature: domain.DefaultTemperature,
	})
	if err != nil {
		h.opts.Logger.Error("chat completion failed", "op", domain.FunctionChat, "error", err)
		return domain.ChatResponse{}, err
	}
	return domain.ChatResponse{Response: reply}, nil
}

func (h *HostInteractor) SendEmail(ctx context.Context, req domain.EmailRequest) (domain.EmailResponse, error) {
	if err := h.opts.Validator.Validate(req); err != nil {
		return domain.EmailResponse{}, err
	}
	if h.opts.Transport == nil {
		return domain.EmailResponse{}, fmt.Errorf("%w: smtp is not configured", apperrors.ErrNotConfigured)
	}
	if err := h.opts.Transport.Send(ctx, functionsout.Mail{To: req.To, Subject: req.Subject, HTML: req.HTML}); err != nil {
		h.opts.Logger.Error("send email failed", "op", domain.FunctionEmail, "type", req.Type, "error", err)
		return domain.EmailResponse{}, err
	}
	h.opts.Logger.Info("email sent", "type", req.Type)
	return domain.EmailResponse{Sent: true}, nil
}
