package rabbitmq

import (
	"context"

	"civicdesk/internal/conf"
	"civicdesk/internal/mq"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher holds the connection and channel for publishing messages to RabbitMQ.
// Topics are fanout exchanges; messages are transient.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

// NewPublisher connects to RabbitMQ and declares the notification exchange.
func NewPublisher(cfg *conf.RabbitMQConfig, logger *zap.Logger) (*Publisher, error) {
	namedLogger := logger.Named("RabbitMQPublisher")

	conn, err := amqp.Dial(dsn(cfg))
	if err != nil {
		namedLogger.Error("Failed to connect to RabbitMQ", zap.Error(err))
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		namedLogger.Error("Failed to open a channel", zap.Error(err))
		if connErr := conn.Close(); connErr != nil {
			namedLogger.Error("Failed to close connection after channel failure", zap.Error(connErr))
		}
		return nil, err
	}

	if err := declareFanout(ch, cfg.NotificationExchange); err != nil {
		namedLogger.Error("Failed to declare exchange", zap.Error(err), zap.String("exchange", cfg.NotificationExchange))
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	namedLogger.Info("Successfully connected to RabbitMQ")

	return &Publisher{
		conn:    conn,
		channel: ch,
		logger:  namedLogger,
	}, nil
}

// Publish sends body to every queue bound to the exchange named topic.
func (p *Publisher) Publish(ctx context.Context, topic string, body []byte) error {
	err := p.channel.PublishWithContext(ctx,
		topic, // exchange
		"",    // routing key, ignored by fanout
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish a message", zap.Error(err), zap.String("exchange", topic))
		return err
	}

	p.logger.Debug("Message published", zap.String("exchange", topic), zap.Int("bytes", len(body)))
	return nil
}

// Close gracefully closes the channel and the connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Error("Failed to close connection", zap.Error(err))
		}
	}
	p.logger.Info("RabbitMQ connection closed.")
}

var _ mq.Publisher = (*Publisher)(nil)
