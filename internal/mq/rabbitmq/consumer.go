package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"civicdesk/internal/conf"
	"civicdesk/internal/mq"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var errDeliveriesClosed = errors.New("delivery channel closed")

// Consumer binds one exclusive, auto-deleted queue per subscribed exchange.
// Deliveries are auto-acked: a message missed while disconnected is gone.
type Consumer struct {
	conn     *amqp.Connection
	logger   *zap.Logger
	handlers map[string]mq.HandlerFunc // Maps exchange names to handler functions
	done     chan error
}

// NewConsumer creates and returns a new Consumer.
func NewConsumer(cfg *conf.RabbitMQConfig, logger *zap.Logger) (*Consumer, error) {
	namedLogger := logger.Named("RabbitMQConsumer")

	conn, err := amqp.Dial(dsn(cfg))
	if err != nil {
		namedLogger.Error("Failed to connect to RabbitMQ", zap.Error(err))
		return nil, err
	}

	namedLogger.Info("Successfully connected to RabbitMQ")

	return &Consumer{
		conn:     conn,
		logger:   namedLogger,
		handlers: make(map[string]mq.HandlerFunc),
	}, nil
}

// Subscribe registers a handler function for a specific exchange.
func (c *Consumer) Subscribe(topic string, handler mq.HandlerFunc) {
	c.handlers[topic] = handler
}

// Start begins consuming from every subscribed exchange and returns when the
// first subscription stops.
func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered, consumer will not start")
	}

	c.done = make(chan error, len(c.handlers))
	for exchange, handler := range c.handlers {
		go c.consumeExchange(ctx, exchange, handler)
	}

	return <-c.done
}

func (c *Consumer) consumeExchange(ctx context.Context, exchange string, handler mq.HandlerFunc) {
	ch, err := c.conn.Channel()
	if err != nil {
		c.logger.Error("Failed to open a channel", zap.Error(err), zap.String("exchange", exchange))
		c.done <- err
		return
	}
	defer ch.Close()

	if err := declareFanout(ch, exchange); err != nil {
		c.logger.Error("Failed to declare exchange", zap.Error(err), zap.String("exchange", exchange))
		c.done <- err
		return
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		c.logger.Error("Failed to declare a queue", zap.Error(err), zap.String("exchange", exchange))
		c.done <- err
		return
	}

	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		c.logger.Error("Failed to bind queue", zap.Error(err), zap.String("exchange", exchange))
		c.done <- err
		return
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		c.logger.Error("Failed to register a consumer", zap.Error(err), zap.String("exchange", exchange))
		c.done <- err
		return
	}

	c.logger.Info("Started consuming from exchange", zap.String("exchange", exchange), zap.String("queue", q.Name))

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				c.logger.Warn("Delivery channel closed", zap.String("exchange", exchange))
				c.done <- errDeliveriesClosed
				return
			}
			c.dispatch(ctx, exchange, handler, d.Body)
		case <-ctx.Done():
			c.logger.Info("Context cancelled, stopping consumer", zap.String("exchange", exchange))
			c.done <- nil
			return
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, exchange string, handler mq.HandlerFunc, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic recovered in message handler",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
				zap.String("exchange", exchange),
			)
		}
	}()

	c.logger.Debug("Received a message", zap.String("exchange", exchange), zap.Int("bytes", len(body)))
	if err := handler(ctx, body); err != nil {
		c.logger.Error("Handler failed to process message", zap.Error(err), zap.String("exchange", exchange))
	}
}

// Close gracefully closes the connection.
func (c *Consumer) Close() {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("Failed to close connection", zap.Error(err))
		}
	}
}

var _ mq.Subscriber = (*Consumer)(nil)
