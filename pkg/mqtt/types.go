package mqtt

import (
	"context"
)

// Delivery guarantees used by gcslink. Exactly-once delivery is not used.
const (
	AtMostOnce  = 0
	AtLeastOnce = 1
)

// MessageHandler is called on the client's goroutine for every message on a
// subscribed topic. It must not block.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client is the broker connection the bridge publishes through. The
// implementation reconnects on its own and restores subscriptions.
type Client interface {
	// Start begins connecting in the background and returns immediately.
	Start(ctx context.Context) error

	Disconnect(ctx context.Context)

	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Subscribe registers handler for a topic filter. The filter may carry a
	// $share/<group>/ prefix.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	Unsubscribe(ctx context.Context, topic string) error

	// AwaitConnection blocks until the first connection is up or ctx ends.
	AwaitConnection(ctx context.Context) error

	IsConnected() bool
}
