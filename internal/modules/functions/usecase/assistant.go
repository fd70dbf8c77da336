package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dsaboost/internal/modules/functions/domain"
	"dsaboost/internal/modules/functions/dto"
	functionsin "dsaboost/internal/modules/functions/port/in"
	functionsout "dsaboost/internal/modules/functions/port/out"
	apperrors "dsaboost/internal/platform/errors"
)

// maxContextTurns bounds the history sent with each question.
const maxContextTurns = 20

type AssistantInteractor struct {
	invoker  functionsout.Invoker
	chatType string
	topic    string

	mu      sync.Mutex
	history []domain.ChatMessage
}

func NewAssistant(invoker functionsout.Invoker, chatType, topic string) functionsin.Assistant {
	if chatType == "" {
		chatType = domain.ChatTypeGeneral
	}
	return &AssistantInteractor{invoker: invoker, chatType: chatType, topic: topic}
}

func (a *AssistantInteractor) Ask(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", apperrors.ErrInvalidInput)
	}
	a.mu.Lock()
	turns := append([]domain.ChatMessage{}, a.history...)
	a.mu.Unlock()
	if len(turns) > maxContextTurns {
		turns = turns[len(turns)-maxContextTurns:]
	}

	var out domain.ChatResponse
	err := a.invoker.Invoke(ctx, domain.FunctionChat, domain.ChatRequest{
		Message:  message,
		ChatType: a.chatType,
		Topic:    a.topic,
		Context:  turns,
	}, &out)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.history = append(a.history,
		domain.ChatMessage{Role: "user", Content: message},
		domain.ChatMessage{Role: "assistant", Content: out.Response},
	)
	a.mu.Unlock()
	return out.Response, nil
}

func (a *AssistantInteractor) History() []dto.Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]dto.Turn, 0, len(a.history))
	for _, msg := range a.history {
		out = append(out, dto.Turn{Role: msg.Role, Content: msg.Content})
	}
	return out
}

func (a *AssistantInteractor) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}
