package llm

import "context"

// Message roles follow the common chat-completions convention.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLM is the single capability the protocol layer needs from a model
// provider: send a transcript, receive text back. Calls block until the
// provider answers or ctx is cancelled; nothing here retries.
type LLM interface {
	Name() string
	Chat(ctx context.Context, messages []Message) (string, error)
}
