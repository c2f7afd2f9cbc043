package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/emailotp/internal/otp/entity"
	"github.com/shandysiswandi/emailotp/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type RequestOTPInput struct {
	Email string
}

// RequestOTP issues a new code to the address and stores it once delivery succeeded.
func (s *Usecase) RequestOTP(ctx context.Context, in RequestOTPInput) (status entity.EmailStatus) {
	ctx, span := s.startSpan(ctx, "RequestOTP")
	defer span.End()

	email := entity.NormalizeEmail(in.Email)
	attempts := 0

	defer func() {
		span.SetAttributes(attribute.String("otp.status", status.String()))
		s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status.String())))

		ev := OTPRequestedEvent{
			EventID:      s.uuid.Generate(),
			Email:        email,
			Status:       status,
			AttemptCount: attempts,
			OccurredAt:   s.clock.Now(),
		}
		s.emit(ctx, "otp_requested", func(ctx context.Context) error {
			return s.repoMessaging.PublishOTPRequested(ctx, ev)
		})
	}()

	if !s.identity.Validate(in.Email) {
		slog.WarnContext(ctx, "otp requested for invalid email", "email", email)
		return entity.EmailStatusInvalid
	}

	now := s.clock.Now()
	issued := entity.IssuedOTP{
		ID:        s.uid.Generate(),
		Code:      s.generator.Generate(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.settings.Timeout()),
	}

	if ok := s.repoMailer.Send(ctx, mail.Message{
		To:       []string{email},
		Subject:  s.settings.MailSubject,
		TextBody: mailBody(issued.Code, s.settings.TimeoutMinutes),
	}); !ok {
		slog.WarnContext(ctx, "failed to deliver otp email", "email", email)
		return entity.EmailStatusFail
	}

	rec, err := s.repoStore.Append(ctx, email, issued)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo append issued otp", "email", email, "error", err)
		return entity.EmailStatusFail
	}

	attempts = rec.AttemptCount
	slog.InfoContext(ctx, "otp issued", "email", email, "otp_id", issued.ID, "expires_at", issued.ExpiresAt)

	return entity.EmailStatusOK
}

func mailBody(code, minutes int) string {
	return fmt.Sprintf("Your OTP Code is %d. The code is valid for %d minute(s).", code, minutes)
}
