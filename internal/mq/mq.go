package mq

import "context"

// Publisher defines the interface for any message queue publisher.
// This allows for different MQ implementations to be used interchangeably.
type Publisher interface {
	Publish(ctx context.Context, topic string, body []byte) error
	Close()
}

// HandlerFunc handles one delivered message body.
type HandlerFunc func(ctx context.Context, body []byte) error

// Subscriber delivers every message published on a topic to its handler.
type Subscriber interface {
	Subscribe(topic string, handler HandlerFunc)
	// Start blocks until ctx is done or a subscription fails.
	Start(ctx context.Context) error
	Close()
}
