package mail

import (
	"context"
	"log/slog"
)

// Logger is a Mail implementation that only writes the envelope to the log.
// Bodies are never logged. Intended for local development.
type Logger struct{}

// NewLogger returns a Logger mail sender.
func NewLogger() *Logger {
	return &Logger{}
}

// Send logs the recipients and subject of msg.
func (*Logger) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.Recipients()) == 0 {
		return ErrSMTPNoRecipients
	}

	slog.InfoContext(ctx, "mail delivered to log", "to", msg.To, "cc", msg.Cc, "subject", msg.Subject)
	return nil
}

// Close implements io.Closer for interface compatibility.
func (*Logger) Close() error {
	return nil
}
