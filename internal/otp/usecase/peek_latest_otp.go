package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/emailotp/internal/otp/entity"
	"github.com/shandysiswandi/emailotp/internal/pkg/goerror"
)

// PeekLatestOTP returns the newest code issued to email. Debug use only.
func (s *Usecase) PeekLatestOTP(ctx context.Context, email string) (int, error) {
	ctx, span := s.startSpan(ctx, "PeekLatestOTP")
	defer span.End()

	email = entity.NormalizeEmail(email)

	rec, err := s.repoStore.Get(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		return 0, goerror.NewBusiness("No active otp", goerror.CodeNotFound,
			"status", entity.OTPStatusNoActive.String())
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp record", "email", email, "error", err)
		return 0, goerror.NewServer(err)
	}

	latest, ok := rec.Latest()
	if !ok {
		return 0, goerror.NewBusiness("No active otp", goerror.CodeNotFound,
			"status", entity.OTPStatusNoActive.String())
	}

	return latest.Code, nil
}
