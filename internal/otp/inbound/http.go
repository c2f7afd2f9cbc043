package inbound

import (
	"context"

	"github.com/shandysiswandi/emailotp/internal/otp/entity"
	"github.com/shandysiswandi/emailotp/internal/otp/usecase"
	"github.com/shandysiswandi/emailotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/emailotp/internal/pkg/router"
)

type uc interface {
	RequestOTP(ctx context.Context, in usecase.RequestOTPInput) entity.EmailStatus
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) entity.OTPStatus
	PeekLatestOTP(ctx context.Context, email string) (int, error)
}

// Options toggles optional endpoint behavior.
type Options struct {
	// Idempotency deduplicates OTP requests carrying an Idempotency-Key header. Nil disables it.
	Idempotency idempotency.Idempotency
	// PeekEnabled registers the debug endpoint returning the newest code.
	PeekEnabled bool
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, opt Options) {
	end := &HTTPEndpoint{uc: uc, idemp: opt.Idempotency}

	r.POST("/api/v1/otp/request", end.RequestOTP)
	r.POST("/api/v1/otp/verify", end.VerifyOTP)

	if opt.PeekEnabled {
		r.GET("/api/v1/otp/peek", end.PeekLatestOTP)
	}
}
