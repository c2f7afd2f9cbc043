package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// ErrPubSubProjectIDRequired is returned when neither a client nor a project id is given.
var ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")

// PubSubConfig configures the Google Pub/Sub implementation.
type PubSubConfig struct {
	ProjectID string
	// Client is used as is when set; ProjectID and ClientOptions are ignored.
	Client        *pubsub.Client
	ClientOptions []option.ClientOption
}

// PubSub publishes with message ordering enabled so events that share an
// OrderingKey are delivered in publish order. Headers become attributes.
type PubSub struct {
	guard
	client *pubsub.Client

	pmu        sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewPubSub constructs a PubSub messaging client.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	c := cfg.Client
	if c == nil {
		if cfg.ProjectID == "" {
			return nil, ErrPubSubProjectIDRequired
		}

		var err error
		if c, err = pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...); err != nil {
			return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
		}
	}

	return &PubSub{client: c, publishers: map[string]*pubsub.Publisher{}}, nil
}

// Close flushes and stops every publisher, then closes the client.
func (p *PubSub) Close() error {
	if !p.shut() {
		return nil
	}

	p.pmu.Lock()
	pubs := p.publishers
	p.publishers = nil
	p.pmu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}
	return p.client.Close()
}

// Publish waits for the server-assigned message id. A failed ordered publish
// pauses its OrderingKey, so the key is resumed before returning the error.
func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := p.preflight(ctx, destination); err != nil {
		return PublishResult{}, err
	}

	pub, err := p.publisher(destination)
	if err != nil {
		return PublishResult{}, err
	}

	id, err := pub.Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  msg.stringHeaders(),
		OrderingKey: msg.OrderingKey,
	}).Get(ctx)
	if err != nil {
		if msg.OrderingKey != "" {
			pub.ResumePublish(msg.OrderingKey)
		}
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: time.Now()}, nil
}

func (p *PubSub) publisher(topic string) (*pubsub.Publisher, error) {
	p.pmu.Lock()
	defer p.pmu.Unlock()

	if p.publishers == nil {
		return nil, ErrClosed
	}
	if pub, ok := p.publishers[topic]; ok {
		return pub, nil
	}

	pub := p.client.Publisher(topic)
	pub.EnableMessageOrdering = true
	p.publishers[topic] = pub
	return pub, nil
}
