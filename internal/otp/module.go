package otp

import (
	"github.com/shandysiswandi/emailotp/internal/otp/inbound"
	"github.com/shandysiswandi/emailotp/internal/otp/outbound/email"
	"github.com/shandysiswandi/emailotp/internal/otp/outbound/memstore"
	"github.com/shandysiswandi/emailotp/internal/otp/outbound/mq"
	"github.com/shandysiswandi/emailotp/internal/otp/usecase"
	"github.com/shandysiswandi/emailotp/internal/pkg/clock"
	"github.com/shandysiswandi/emailotp/internal/pkg/config"
	"github.com/shandysiswandi/emailotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/emailotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"github.com/shandysiswandi/emailotp/internal/pkg/mail"
	"github.com/shandysiswandi/emailotp/internal/pkg/messaging"
	pkgotp "github.com/shandysiswandi/emailotp/internal/pkg/otp"
	"github.com/shandysiswandi/emailotp/internal/pkg/router"
	"github.com/shandysiswandi/emailotp/internal/pkg/uid"
	"github.com/shandysiswandi/emailotp/internal/pkg/validator"
)

type Dependency struct {
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Generator  pkgotp.Generator           `validate:"required"`
	Validator  validator.Validator        `validate:"required"`

	// Idempotency is optional; nil disables Idempotency-Key handling.
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	settings, err := usecase.NewSettings(dep.Config)
	if err != nil {
		return err
	}

	store := memstore.New(dep.Instrument, dep.Config.GetInt("modules.otp.history_limit"))
	mailer := email.NewMailer(dep.Mail, dep.Instrument, dep.Config.GetSecond("mail.timeout_seconds"))
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument, mq.Backoff{
		Base:       dep.Config.GetMillisecond("messaging.retry.base_milliseconds"),
		Cap:        dep.Config.GetMillisecond("messaging.retry.cap_milliseconds"),
		MaxRetries: dep.Config.GetUint64("messaging.retry.max_retries"),
	})

	uc, err := usecase.New(usecase.Dependency{
		Settings:      settings,
		Identity:      usecase.NewIdentityValidator(dep.Validator, settings.ValidDomains),
		RepoStore:     store,
		RepoMailer:    mailer,
		RepoMessaging: repoMsg,
		Generator:     dep.Generator,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})
	if err != nil {
		return err
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.Options{
		Idempotency: dep.Idempotency,
		PeekEnabled: dep.Config.GetBool("modules.otp.peek_enabled"),
	})

	return nil
}
