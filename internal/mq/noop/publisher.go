package noop

import (
	"context"

	"civicdesk/internal/mq"
)

// Publisher drops every message. It is used when no broker is configured.
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(ctx context.Context, topic string, body []byte) error {
	return nil
}

func (p *Publisher) Close() {}

// Subscriber never receives anything.
type Subscriber struct{}

func NewSubscriber() *Subscriber {
	return &Subscriber{}
}

func (s *Subscriber) Subscribe(topic string, handler mq.HandlerFunc) {}

func (s *Subscriber) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *Subscriber) Close() {}

var (
	_ mq.Publisher  = (*Publisher)(nil)
	_ mq.Subscriber = (*Subscriber)(nil)
)
