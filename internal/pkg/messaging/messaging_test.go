package messaging

import (
	"context"
	"errors"
	"testing"
)

func TestNewFromDriver(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{"", DriverNone, " none "} {
		m, err := NewFromDriver(ctx, driver, FactoryOptions{})
		if err != nil {
			t.Fatalf("NewFromDriver(%q) error = %v", driver, err)
		}
		if _, ok := m.(*Noop); !ok {
			t.Fatalf("NewFromDriver(%q) = %T, want *Noop", driver, m)
		}
	}

	if _, err := NewFromDriver(ctx, "rabbitmq", FactoryOptions{}); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("error = %v, want ErrUnknownDriver", err)
	}
	if _, err := NewFromDriver(ctx, DriverKafka, FactoryOptions{}); !errors.Is(err, ErrKafkaBrokersRequired) {
		t.Fatalf("error = %v, want ErrKafkaBrokersRequired", err)
	}
	if _, err := NewFromDriver(ctx, DriverNATS, FactoryOptions{}); !errors.Is(err, ErrNATSURLRequired) {
		t.Fatalf("error = %v, want ErrNATSURLRequired", err)
	}
	if _, err := NewFromDriver(ctx, DriverNSQ, FactoryOptions{}); !errors.Is(err, ErrNSQProducerAddrRequired) {
		t.Fatalf("error = %v, want ErrNSQProducerAddrRequired", err)
	}
	if _, err := NewFromDriver(ctx, DriverGooglePubSub, FactoryOptions{}); !errors.Is(err, ErrPubSubProjectIDRequired) {
		t.Fatalf("error = %v, want ErrPubSubProjectIDRequired", err)
	}
}

func TestNoop_Publish(t *testing.T) {
	n := NewNoop()

	res, err := n.Publish(context.Background(), "otp_requested", OutgoingMessage{Body: []byte("{}")})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Topic != "otp_requested" {
		t.Fatalf("Topic = %q", res.Topic)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := n.Publish(ctx, "otp_requested", OutgoingMessage{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Publish() error = %v, want context.Canceled", err)
	}
}

func TestKafka_PublishValidation(t *testing.T) {
	k, err := NewKafka(KafkaConfig{Brokers: []string{"127.0.0.1:9092"}})
	if err != nil {
		t.Fatalf("NewKafka() error = %v", err)
	}

	if _, err := k.Publish(context.Background(), "", OutgoingMessage{}); !errors.Is(err, ErrDestinationRequired) {
		t.Fatalf("error = %v, want ErrDestinationRequired", err)
	}

	if err := k.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := k.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := k.Publish(context.Background(), "t", OutgoingMessage{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("error = %v, want ErrClosed", err)
	}
}

func TestNoop_Closed(t *testing.T) {
	n := NewNoop()
	if err := n.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := n.Publish(context.Background(), "otp_verified", OutgoingMessage{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Publish() after Close error = %v, want ErrClosed", err)
	}
}

type recordingPublisher struct {
	Noop
	destinations []string
}

func (r *recordingPublisher) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	r.destinations = append(r.destinations, destination)
	return r.Noop.Publish(ctx, destination, msg)
}

func TestPrefixed_Publish(t *testing.T) {
	rec := &recordingPublisher{}
	p := &prefixed{Messaging: rec, prefix: "emailotp."}

	res, err := p.Publish(context.Background(), "otp_requested", OutgoingMessage{})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Topic != "emailotp.otp_requested" || len(rec.destinations) != 1 || rec.destinations[0] != "emailotp.otp_requested" {
		t.Fatalf("Publish() topic = %q, seen = %v", res.Topic, rec.destinations)
	}
	if _, err := p.Publish(context.Background(), "", OutgoingMessage{}); !errors.Is(err, ErrDestinationRequired) {
		t.Fatalf("Publish(\"\") error = %v, want ErrDestinationRequired", err)
	}

	m, err := NewFromDriver(context.Background(), DriverNone, FactoryOptions{TopicPrefix: "x."})
	if err != nil {
		t.Fatalf("NewFromDriver() error = %v", err)
	}
	if _, ok := m.(*prefixed); !ok {
		t.Fatalf("NewFromDriver() with prefix = %T, want *prefixed", m)
	}
}

func TestOutgoingMessage_stringHeaders(t *testing.T) {
	got := OutgoingMessage{
		Headers: []Header{{Key: "cID", Value: []byte("abc")}, {Key: "", Value: []byte("skip")}, {Key: "cID", Value: []byte("def")}},
	}.stringHeaders()

	if len(got) != 1 || got["cID"] != "def" {
		t.Fatalf("stringHeaders() = %v", got)
	}
	if got := (OutgoingMessage{}).stringHeaders(); got != nil {
		t.Fatalf("stringHeaders(empty) = %v, want nil", got)
	}
}
