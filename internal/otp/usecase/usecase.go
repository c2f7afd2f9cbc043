package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/emailotp/internal/otp/entity"
	"github.com/shandysiswandi/emailotp/internal/pkg/clock"
	"github.com/shandysiswandi/emailotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"github.com/shandysiswandi/emailotp/internal/pkg/mail"
	"github.com/shandysiswandi/emailotp/internal/pkg/otp"
	"github.com/shandysiswandi/emailotp/internal/pkg/uid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type OTPRequestedEvent struct {
	EventID      string
	Email        string
	Status       entity.EmailStatus
	AttemptCount int
	OccurredAt   time.Time
}

type OTPVerifiedEvent struct {
	EventID      string
	Email        string
	Status       entity.OTPStatus
	AttemptCount int
	OccurredAt   time.Time
}

type repoStore interface {
	Append(ctx context.Context, email string, issued entity.IssuedOTP) (*entity.IdentityRecord, error)
	Update(ctx context.Context, email string, fn func(rec *entity.IdentityRecord) error) error
	Get(ctx context.Context, email string) (*entity.IdentityRecord, error)
	Len() int64
}

type repoMailer interface {
	Send(ctx context.Context, msg mail.Message) bool
}

type repoMessaging interface {
	PublishOTPRequested(ctx context.Context, msg OTPRequestedEvent) error
	PublishOTPVerified(ctx context.Context, msg OTPVerifiedEvent) error
}

type Usecase struct {
	settings      Settings
	identity      *IdentityValidator
	repoStore     repoStore
	repoMailer    repoMailer
	repoMessaging repoMessaging
	generator     otp.Generator
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	requests      metric.Int64Counter
	verifications metric.Int64Counter
}

type Dependency struct {
	Settings      Settings
	Identity      *IdentityValidator
	RepoStore     repoStore
	RepoMailer    repoMailer
	RepoMessaging repoMessaging
	Generator     otp.Generator
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) (*Usecase, error) {
	s := &Usecase{
		settings:      dep.Settings,
		identity:      dep.Identity,
		repoStore:     dep.RepoStore,
		repoMailer:    dep.RepoMailer,
		repoMessaging: dep.RepoMessaging,
		generator:     dep.Generator,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}

	meter := s.ins.Meter("otp.usecase")

	var err error
	s.requests, err = meter.Int64Counter("otp.requests",
		metric.WithDescription("OTP requests by resulting status"))
	if err != nil {
		return nil, err
	}

	s.verifications, err = meter.Int64Counter("otp.verifications",
		metric.WithDescription("OTP verifications by resulting status"))
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge("otp.identities",
		metric.WithDescription("Identities holding an OTP record"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(s.repoStore.Len())
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

// emit publishes fn in the background. The caller's status never depends on it.
func (s *Usecase) emit(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if s.repoMessaging == nil {
		return
	}

	ok := s.goroutine.GoDetached(ctx, s.settings.EventTimeout, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp event", "event", name, "error", err)
			return err
		}
		return nil
	})
	if !ok {
		slog.WarnContext(ctx, "otp event dropped", "event", name)
	}
}
