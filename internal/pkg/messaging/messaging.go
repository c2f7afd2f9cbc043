package messaging

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

var (
	// ErrDestinationRequired is returned for an empty topic or subject.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("messaging: client is closed")
)

// Messaging is a broker-agnostic publishing client.
type Messaging interface {
	io.Closer
	Publisher
}

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is one event on the wire.
//
// Key partitions Kafka topics and OrderingKey orders Pub/Sub deliveries.
// Publishers set both to the identity so the events of one email stay in order.
type OutgoingMessage struct {
	Body        []byte
	Key         []byte
	OrderingKey string
	// Headers are dropped by NSQ, which has no message metadata.
	Headers []Header
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	// MessageID is set by brokers that assign one (Pub/Sub).
	MessageID string
	Topic     string
	Timestamp time.Time
}

// stringHeaders flattens Headers for brokers that only carry string
// metadata. Later duplicates win; blank keys are skipped.
func (m OutgoingMessage) stringHeaders() map[string]string {
	if len(m.Headers) == 0 {
		return nil
	}

	out := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		if h.Key != "" {
			out[h.Key] = string(h.Value)
		}
	}
	return out
}

// guard is the closed flag shared by every driver.
type guard struct {
	mu     sync.Mutex
	closed bool
}

// shut marks the guard closed and reports whether this call did it.
func (g *guard) shut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.closed = true
	return true
}

// preflight rejects a publish before it reaches the broker.
func (g *guard) preflight(ctx context.Context, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	return nil
}
