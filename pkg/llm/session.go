package llm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is a long-lived conversational context: a system prompt plus the
// growing transcript of every exchange. Each Send appends both sides, so the
// provider sees the whole conversation on every call. A session is never
// reset; start a new one instead. Not safe for concurrent use: one in-flight
// call at a time.
type Session struct {
	id       string
	provider LLM
	messages []Message
	logger   *zap.Logger
}

func NewSession(provider LLM, systemPrompt string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:       uuid.NewString(),
		provider: provider,
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
		logger:   logger,
	}
}

// ID returns the session's identifier, for logging and audit.
func (s *Session) ID() string { return s.id }

// Len reports the number of messages in the transcript, system prompt
// included.
func (s *Session) Len() int { return len(s.messages) }

// Send appends content as a user turn, calls the provider with the full
// transcript, and appends the reply. On transport failure the transcript is
// left exactly as it was before the call.
func (s *Session) Send(ctx context.Context, content string) (string, error) {
	transcript := append(append([]Message{}, s.messages...), Message{Role: RoleUser, Content: content})

	s.logger.Debug("sending to model",
		zap.String("session", s.id),
		zap.String("provider", s.provider.Name()),
		zap.Int("transcript_len", len(transcript)),
		zap.Int("request_bytes", len(content)))

	reply, err := s.provider.Chat(ctx, transcript)
	if err != nil {
		s.logger.Warn("model call failed", zap.String("session", s.id), zap.Error(err))
		return "", err
	}

	s.messages = append(transcript, Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}
