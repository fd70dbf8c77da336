package domain

import (
	"encoding/json"
	"fmt"
)

const (
	FunctionChat  = "ai-chat"
	FunctionEmail = "send-email"

	ChatTypeDSAHelp = "dsa-help"
	ChatTypeGeneral = "general"

	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

type EmailType string

const (
	EmailWelcome           EmailType = "welcome"
	EmailTimerComplete     EmailType = "timer_complete"
	EmailDailySummary      EmailType = "daily_summary"
	EmailAchievement       EmailType = "achievement"
	EmailAdminNotification EmailType = "admin_notification"
)

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	Message  string        `json:"message" validate:"required,max=8000"`
	ChatType string        `json:"chatType" validate:"omitempty,oneof=dsa-help general"`
	Topic    string        `json:"topic,omitempty"`
	Context  []ChatMessage `json:"context" validate:"max=50,dive"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type EmailRequest struct {
	To      string    `json:"to" validate:"required,email"`
	Subject string    `json:"subject" validate:"required,max=200"`
	HTML    string    `json:"html" validate:"required"`
	Type    EmailType `json:"type" validate:"required,oneof=welcome timer_complete daily_summary achievement admin_notification"`
}

type EmailResponse struct {
	Sent bool `json:"sent"`
}

// Envelope is the body of every function response.
type Envelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// SystemPrompt picks the assistant persona for a chat type.
func SystemPrompt(chatType, topic string) string {
	if chatType != ChatTypeDSAHelp {
		return "You are a helpful AI assistant. Provide clear, accurate, and helpful responses to user questions. Keep responses concise and relevant."
	}
	if topic == "" {
		topic = "General DSA"
	}
	return fmt.Sprintf(`You are a DSA (Data Structures and Algorithms) learning assistant. Help users understand concepts, solve problems, and improve their coding skills.

Current topic: %s

Provide:
- Clear explanations of concepts
- Step-by-step problem-solving approaches
- Time and space complexity analysis
- Code examples when helpful
- Practice suggestions
- Common patterns and techniques

Keep responses concise but thorough. If the user asks about a specific problem, break down the approach clearly.`, topic)
}

// BuildMessages prepends the system prompt and appends the new user message.
func BuildMessages(req ChatRequest) []ChatMessage {
	messages := make([]ChatMessage, 0, len(req.Context)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: SystemPrompt(req.ChatType, req.Topic)})
	messages = append(messages, req.Context...)
	return append(messages, ChatMessage{Role: "user", Content: req.Message})
}
