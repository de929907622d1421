package mail

import (
	"context"

	"github.com/bookendsapp/bookends-server/internal/logger"
)

// LogSender writes messages to the log instead of delivering them. Used in
// development when no SendGrid key is configured, so activation and recovery
// links still show up somewhere usable.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("outbound email (not delivered)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// Recorder captures sent messages for assertions in tests.
type Recorder struct {
	Messages []Message
	Err      error
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	if r.Err != nil {
		return r.Err
	}
	r.Messages = append(r.Messages, msg)
	return nil
}

// Last returns the most recently recorded message.
func (r *Recorder) Last() Message {
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}
