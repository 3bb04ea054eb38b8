package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConsoleSender logs messages instead of delivering them. It is the default
// transport in development and records sent messages for inspection in tests.
type ConsoleSender struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

var _ Sender = (*ConsoleSender)(nil)

// NewConsoleSender constructs the console transport.
func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSender{logger: logger}
}

// Send logs the message and records it.
func (s *ConsoleSender) Send(_ context.Context, msg *Message) (string, error) {
	id := uuid.NewString()
	s.logger.Sugar().Infow("console mail",
		"message_id", id,
		"to", msg.ToAddress,
		"subject", msg.Subject,
		"body", msg.PlainBody,
	)

	s.mu.Lock()
	s.sent = append(s.sent, *msg)
	s.mu.Unlock()

	return id, nil
}

// Sent returns a copy of every message delivered so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
