package messaging

import (
	"context"
	"time"
)

// Noop accepts and drops every message. It backs messaging.driver "none".
type Noop struct {
	guard
}

// NewNoop returns a Noop publisher.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := n.preflight(ctx, destination); err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

func (n *Noop) Close() error {
	n.shut()
	return nil
}
