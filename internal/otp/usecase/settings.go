package usecase

import (
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/emailotp/internal/pkg/config"
)

const defaultMailSubject = "Your one-time passcode"

var (
	ErrNoValidDomain     = errors.New("otp: modules.otp.valid_domain is empty")
	ErrInvalidMaxTry     = errors.New("otp: modules.otp.max_try_count must be positive")
	ErrInvalidOTPTimeout = errors.New("otp: modules.otp.timeout_minutes must be positive")
)

// Settings is the OTP configuration snapshot taken at construction.
type Settings struct {
	ValidDomains   []string
	MaxTryCount    int
	TimeoutMinutes int
	MailSubject    string
	EventTimeout   time.Duration
}

// Timeout is the validity window of an issued code.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMinutes) * time.Minute
}

// NewSettings reads the modules.otp.* keys.
func NewSettings(cfg config.Config) (Settings, error) {
	st := Settings{
		ValidDomains: lo.Map(cfg.GetArray("modules.otp.valid_domain"), func(d string, _ int) string {
			return strings.ToLower(strings.TrimSpace(d))
		}),
		MaxTryCount:    cfg.GetInt("modules.otp.max_try_count"),
		TimeoutMinutes: cfg.GetInt("modules.otp.timeout_minutes"),
		MailSubject:    strings.TrimSpace(cfg.GetString("modules.otp.mail_subject")),
		EventTimeout:   cfg.GetSecond("modules.otp.event_timeout_seconds"),
	}

	if st.MailSubject == "" {
		st.MailSubject = defaultMailSubject
	}
	if st.EventTimeout <= 0 {
		st.EventTimeout = 10 * time.Second
	}

	return st, st.check()
}

func (s Settings) check() error {
	if len(lo.Compact(s.ValidDomains)) == 0 {
		return ErrNoValidDomain
	}
	if s.MaxTryCount <= 0 {
		return ErrInvalidMaxTry
	}
	if s.TimeoutMinutes <= 0 {
		return ErrInvalidOTPTimeout
	}
	return nil
}
