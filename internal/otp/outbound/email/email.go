// Package email adapts a mail transport to the boolean delivery contract of the OTP usecase.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"github.com/shandysiswandi/emailotp/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

var errPanic = errors.New("mail transport panicked")

type Mailer struct {
	client  mail.Mail
	ins     instrument.Instrumentation
	timeout time.Duration
}

// NewMailer wraps client. A positive timeout bounds every Send.
func NewMailer(client mail.Mail, ins instrument.Instrumentation, timeout time.Duration) *Mailer {
	return &Mailer{client: client, ins: ins, timeout: timeout}
}

// Send delivers msg and reports success. Errors, cancellation, timeouts and
// panics in the transport all come back as false.
func (m *Mailer) Send(ctx context.Context, msg mail.Message) bool {
	ctx, span := m.ins.Tracer("otp.outbound.email").Start(ctx, "Send")
	defer span.End()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if rvr := recover(); rvr != nil {
				done <- fmt.Errorf("%w: %v", errPanic, rvr)
			}
		}()
		done <- m.client.Send(ctx, msg)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to send otp email", "to", msg.To, "error", err)
		return false
	}

	return true
}
