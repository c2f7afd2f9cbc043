package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrKafkaBrokersRequired is returned when no Kafka brokers are configured.
var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

// KafkaConfig configures the Kafka implementation.
type KafkaConfig struct {
	Brokers []string
	// WriteTimeout bounds a single WriteMessages call. Zero keeps the kafka-go default.
	WriteTimeout time.Duration
	// RequiredAcks sets the acknowledgement level (0 none, 1 leader, -1 all).
	RequiredAcks int
}

// Kafka keeps one writer per topic. Messages are hashed by Key so every
// event of one identity lands on the same partition.
type Kafka struct {
	guard
	cfg KafkaConfig

	wmu     sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafka constructs a Kafka messaging client. Writers are created on first use.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	cfg.Brokers = append([]string(nil), cfg.Brokers...)
	return &Kafka{cfg: cfg, writers: map[string]*kafka.Writer{}}, nil
}

// Close flushes and closes every writer.
func (k *Kafka) Close() error {
	if !k.shut() {
		return nil
	}

	k.wmu.Lock()
	writers := k.writers
	k.writers = nil
	k.wmu.Unlock()

	var err error
	for _, w := range writers {
		err = errors.Join(err, w.Close())
	}
	return err
}

func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := k.preflight(ctx, destination); err != nil {
		return PublishResult{}, err
	}

	w, err := k.writer(destination)
	if err != nil {
		return PublishResult{}, err
	}

	kmsg := kafka.Message{Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for _, h := range msg.Headers {
		if h.Key != "" {
			kmsg.Headers = append(kmsg.Headers, kafka.Header{Key: h.Key, Value: h.Value})
		}
	}

	if err := w.WriteMessages(ctx, kmsg); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: kmsg.Time}, nil
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.wmu.Lock()
	defer k.wmu.Unlock()

	if k.writers == nil {
		return nil, ErrClosed
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequiredAcks(k.cfg.RequiredAcks),
		WriteTimeout:           k.cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	k.writers[topic] = w
	return w, nil
}
