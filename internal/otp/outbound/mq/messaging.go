// Package mq publishes OTP lifecycle events to the configured broker.
package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/emailotp/internal/otp/usecase"
	"github.com/shandysiswandi/emailotp/internal/pkg/instrument"
	"github.com/shandysiswandi/emailotp/internal/pkg/messaging"
	"github.com/shandysiswandi/emailotp/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

// Backoff configures publish retries.
type Backoff struct {
	Base       time.Duration
	Cap        time.Duration
	MaxRetries uint64
}

// DefaultBackoff is used when NewMessaging receives a zero Backoff.
var DefaultBackoff = Backoff{Base: 100 * time.Millisecond, Cap: 2 * time.Second, MaxRetries: 3}

type Messaging struct {
	client  messaging.Messaging
	ins     instrument.Instrumentation
	backoff Backoff
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation, b Backoff) *Messaging {
	if b.Base <= 0 {
		b = DefaultBackoff
	}
	return &Messaging{client: client, ins: ins, backoff: b}
}

func (m *Messaging) PublishOTPRequested(ctx context.Context, msg usecase.OTPRequestedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPRequested")
	defer span.End()

	body, err := json.Marshal(event.OTPRequestedMessage{
		EventID:      msg.EventID,
		Email:        msg.Email,
		Status:       msg.Status.String(),
		AttemptCount: msg.AttemptCount,
		OccurredAt:   msg.OccurredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.OTPRequestedDestination, msg.Email, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishOTPVerified(ctx context.Context, msg usecase.OTPVerifiedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPVerified")
	defer span.End()

	body, err := json.Marshal(event.OTPVerifiedMessage{
		EventID:      msg.EventID,
		Email:        msg.Email,
		Status:       msg.Status.String(),
		AttemptCount: msg.AttemptCount,
		OccurredAt:   msg.OccurredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.publish(ctx, event.OTPVerifiedDestination, msg.Email, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) publish(ctx context.Context, destination, key string, body []byte) error {
	cID := instrument.GetCorrelationID(ctx)
	out := messaging.OutgoingMessage{
		Body:        body,
		Key:         []byte(key),
		OrderingKey: key,
		Headers:     []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}

	b := retry.NewExponential(m.backoff.Base)
	b = retry.WithCappedDuration(m.backoff.Cap, b)
	b = retry.WithMaxRetries(m.backoff.MaxRetries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if _, err := m.client.Publish(ctx, destination, out); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
