package entity

// EmailStatus is the outcome of RequestOTP.
type EmailStatus int8

const (
	// EmailStatusOK means the code was delivered and is now the newest for the identity.
	EmailStatusOK EmailStatus = iota + 1
	// EmailStatusFail means delivery failed; nothing was stored.
	EmailStatusFail
	// EmailStatusInvalid means the address was malformed or outside the allowed domains.
	EmailStatusInvalid
)

func (s EmailStatus) String() string {
	switch s {
	case EmailStatusOK:
		return "EMAIL_OK"
	case EmailStatusFail:
		return "EMAIL_FAIL"
	case EmailStatusInvalid:
		return "EMAIL_INVALID"
	default:
		return "EMAIL_UNKNOWN"
	}
}

// OTPStatus is the outcome of VerifyOTP.
type OTPStatus int8

const (
	// OTPStatusOK means the guess matched the newest code before it expired.
	OTPStatusOK OTPStatus = iota + 1
	// OTPStatusFail means the guess was wrong or the identity is locked.
	OTPStatusFail
	// OTPStatusTimeout means the guess matched the newest code after it expired.
	OTPStatusTimeout
	// OTPStatusNoActive means no code was ever issued to the identity.
	OTPStatusNoActive
)

func (s OTPStatus) String() string {
	switch s {
	case OTPStatusOK:
		return "OTP_OK"
	case OTPStatusFail:
		return "OTP_FAIL"
	case OTPStatusTimeout:
		return "OTP_TIMEOUT"
	case OTPStatusNoActive:
		return "NO_ACTIVE_OTP"
	default:
		return "OTP_UNKNOWN"
	}
}
