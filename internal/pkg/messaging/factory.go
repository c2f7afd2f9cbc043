package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverNone         = "none"
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries the settings of every driver; only the selected
// driver's block is read.
type FactoryOptions struct {
	// TopicPrefix is prepended to every destination, e.g. "emailotp." turns
	// otp_requested into emailotp.otp_requested.
	TopicPrefix string

	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

// NewFromDriver constructs a Messaging implementation by driver name.
// An empty driver behaves like DriverNone.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	m, err := newDriver(ctx, strings.TrimSpace(driver), opts)
	if err != nil {
		return nil, err
	}
	if opts.TopicPrefix == "" {
		return m, nil
	}
	return &prefixed{Messaging: m, prefix: opts.TopicPrefix}, nil
}

func newDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	switch driver {
	case "", DriverNone:
		return NewNoop(), nil
	case DriverNSQ:
		return NewNSQ(opts.NSQ)
	case DriverKafka:
		return NewKafka(opts.Kafka)
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverGooglePubSub:
		return NewPubSub(ctx, opts.PubSub)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

type prefixed struct {
	Messaging
	prefix string
}

func (p *prefixed) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	return p.Messaging.Publish(ctx, p.prefix+destination, msg)
}
