package worker

import (
	"context"

	"civicdesk/internal/mq"
	"civicdesk/internal/realtime"

	"go.uber.org/zap"
)

// RelaySubscriber feeds notifications published by other instances into the local hub.
type RelaySubscriber struct {
	subscriber mq.Subscriber
	bridge     *realtime.Bridge
	logger     *zap.Logger
}

// NewRelaySubscriber creates a new RelaySubscriber.
func NewRelaySubscriber(subscriber mq.Subscriber, bridge *realtime.Bridge, logger *zap.Logger) *RelaySubscriber {
	return &RelaySubscriber{
		subscriber: subscriber,
		bridge:     bridge,
		logger:     logger.Named("RelaySubscriber"),
	}
}

func (w *RelaySubscriber) Name() string { return "relay-subscriber" }

// Start consumes the relay exchange until ctx is done. A lost subscription only
// costs cross-instance delivery, so it is logged and not retried.
func (w *RelaySubscriber) Start(ctx context.Context) {
	w.subscriber.Subscribe(w.bridge.Exchange(), w.bridge.Handle)
	w.logger.Info("Relay subscriber started", zap.String("exchange", w.bridge.Exchange()))

	if err := w.subscriber.Start(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("Start: relay subscription stopped", zap.Error(err))
	}
	w.logger.Info("Relay subscriber shutting down")
}
