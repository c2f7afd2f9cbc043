package inbound

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/emailotp/internal/otp/entity"
	"github.com/shandysiswandi/emailotp/internal/otp/usecase"
	"github.com/shandysiswandi/emailotp/internal/pkg/goerror"
	"github.com/shandysiswandi/emailotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/emailotp/internal/pkg/router"
)

const headerIdempotencyKey = "Idempotency-Key"

var errNotDelivered = errors.New("otp not delivered")

// HTTPEndpoint exposes HTTP handlers for the OTP lifecycle.
type HTTPEndpoint struct {
	uc    uc
	idemp idempotency.Idempotency
}

// RequestOTP sends a new code to the given email.
func (h *HTTPEndpoint) RequestOTP(r *router.Request) (any, error) {
	var req RequestOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ctx := r.Context()
	in := usecase.RequestOTPInput{Email: req.Email}

	key := r.GetHeader(headerIdempotencyKey)
	if key == "" || h.idemp == nil {
		return emailStatusResponse(h.uc.RequestOTP(ctx, in))
	}

	var status entity.EmailStatus
	err := h.idemp.Exec(ctx, "otp:request:"+key, func(ctx context.Context) error {
		status = h.uc.RequestOTP(ctx, in)
		if status != entity.EmailStatusOK {
			return errNotDelivered
		}
		return nil
	})

	switch {
	case status != 0:
		if err != nil && !errors.Is(err, errNotDelivered) {
			slog.WarnContext(ctx, "failed to record idempotency state", "key", key, "error", err)
		}
		return emailStatusResponse(status)

	case idempotency.IsDuplicate(err):
		return nil, goerror.NewBusiness("Duplicate request", goerror.CodeConflict,
			"idempotency_key", key)

	default:
		slog.ErrorContext(ctx, "failed to acquire idempotency key", "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}
}

// VerifyOTP checks a code against the newest one sent to the email.
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	status := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Email: req.Email,
		Code:  req.Code,
	})

	switch status {
	case entity.OTPStatusOK:
		return VerifyOTPResponse{Status: status.String()}, nil
	case entity.OTPStatusTimeout:
		return nil, goerror.NewBusiness("OTP has expired", goerror.CodeExpired, "status", status.String())
	case entity.OTPStatusNoActive:
		return nil, goerror.NewBusiness("No active OTP", goerror.CodeNotFound, "status", status.String())
	default:
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeUnauthorized, "status", status.String())
	}
}

// PeekLatestOTP returns the newest code for the email. Registered only in debug setups.
func (h *HTTPEndpoint) PeekLatestOTP(r *router.Request) (any, error) {
	email := r.GetQuery("email")
	if email == "" {
		return nil, goerror.NewInvalidInput(nil, "email", "email is a required field")
	}

	code, err := h.uc.PeekLatestOTP(r.Context(), email)
	if err != nil {
		return nil, err
	}

	return PeekLatestOTPResponse{Code: code}, nil
}

func emailStatusResponse(status entity.EmailStatus) (any, error) {
	switch status {
	case entity.EmailStatusOK:
		return RequestOTPResponse{Status: status.String()}, nil
	case entity.EmailStatusInvalid:
		return nil, goerror.NewBusiness("Email is not allowed", goerror.CodeInvalidInput, "status", status.String())
	default:
		return nil, goerror.NewBusiness("Failed to send OTP email", goerror.CodeUnavailable, "status", status.String())
	}
}
