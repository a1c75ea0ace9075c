package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogSender only logs messages. Used when MAIL_ENABLED is false.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender returns a sender that never dials out.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send validates and logs msg.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.Info("mail delivery disabled, message dropped",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}
