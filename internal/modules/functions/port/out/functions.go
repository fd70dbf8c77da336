package out

import (
	"context"

	"dsaboost/internal/modules/functions/domain"
)

type CompletionRequest struct {
	Model       string
	Messages    []domain.ChatMessage
	MaxTokens   int
	Temperature float64
}

type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Mail struct {
	To      string
	Subject string
	HTML    string
}

type MailTransport interface {
	Send(ctx context.Context, mail Mail) error
}

// Invoker calls a hosted function by name and decodes the envelope's data
// into out.
type Invoker interface {
	Invoke(ctx context.Context, name string, payload any, out any) error
}
