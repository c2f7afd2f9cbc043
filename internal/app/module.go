package app

import (
	"log/slog"

	"github.com/shandysiswandi/emailotp/internal/otp"
)

func (a *App) initModules() error {
	if !a.config.GetBool("modules.otp.enabled") {
		slog.Warn("otp module is disabled, only health routes are served")
		return nil
	}

	return otp.New(otp.Dependency{
		Goroutine:   a.goroutine,
		Router:      a.router,
		Mail:        a.mail,
		Messaging:   a.messaging,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		UUID:        a.uuid,
		Clock:       a.clock,
		Generator:   a.otp,
		Validator:   a.validator,
		Idempotency: a.idemp,
	})
}
