package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/emailotp/internal/otp/entity"
	"github.com/shandysiswandi/emailotp/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type VerifyOTPInput struct {
	Email string
	Code  int
}

// VerifyOTP checks a guess against the newest code of the address.
// The compare and the attempt counter update happen under the identity lock.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (status entity.OTPStatus) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	email := entity.NormalizeEmail(in.Email)
	attempts := 0

	defer func() {
		span.SetAttributes(attribute.String("otp.status", status.String()))
		s.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status.String())))

		ev := OTPVerifiedEvent{
			EventID:      s.uuid.Generate(),
			Email:        email,
			Status:       status,
			AttemptCount: attempts,
			OccurredAt:   s.clock.Now(),
		}
		s.emit(ctx, "otp_verified", func(ctx context.Context) error {
			return s.repoMessaging.PublishOTPVerified(ctx, ev)
		})
	}()

	err := s.repoStore.Update(ctx, email, func(rec *entity.IdentityRecord) error {
		status = rec.Verify(in.Code, s.settings.MaxTryCount, s.clock.Now())
		attempts = rec.AttemptCount
		return nil
	})
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.OTPStatusNoActive
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update otp record", "email", email, "error", err)
		return entity.OTPStatusFail
	}

	if status == entity.OTPStatusFail && attempts >= s.settings.MaxTryCount {
		slog.WarnContext(ctx, "otp identity locked", "email", email, "attempt_count", attempts)
	}

	return status
}
