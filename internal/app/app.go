package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/emailotp/internal/pkg/clock"
	"github.com/shandysiswandi/emailotp/internal/pkg/config"
	"github.com/shandysiswandi/emailotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/emailotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"github.com/shandysiswandi/emailotp/internal/pkg/mail"
	"github.com/shandysiswandi/emailotp/internal/pkg/messaging"
	"github.com/shandysiswandi/emailotp/internal/pkg/otp"
	"github.com/shandysiswandi/emailotp/internal/pkg/router"
	"github.com/shandysiswandi/emailotp/internal/pkg/uid"
	"github.com/shandysiswandi/emailotp/internal/pkg/validator"
)

// App owns the process wide dependencies of the email otp service.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	otp       otp.Generator

	redis     *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging

	router     *router.Router
	httpServer *http.Server

	// closers run in reverse registration order on Stop.
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

type stage struct {
	name string
	fn   func() error
}

// New builds the App from the file at CONFIG_PATH. When a stage fails the
// resources opened so far are released before the error is returned.
func New() (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}

	stages := []stage{
		{"config", a.initConfig},
		{"instrument", a.initInstrument},
		{"libraries", a.initLibraries},
		{"redis", a.initRedis},
		{"mail", a.initMail},
		{"messaging", a.initMessaging},
		{"http server", a.initHTTPServer},
		{"modules", a.initModules},
	}

	for _, s := range stages {
		if err := s.fn(); err != nil {
			a.release(context.Background())
			cancel()
			return nil, fmt.Errorf("init %s: %w", s.name, err)
		}
	}

	return a, nil
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// release runs the closers newest first, so instrumentation outlives the
// resources that log through it.
func (a *App) release(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
		}
	}
	a.closers = nil
}
