package rabbitmq

import (
	"fmt"

	"civicdesk/internal/conf"

	amqp "github.com/rabbitmq/amqp091-go"
)

func dsn(cfg *conf.RabbitMQConfig) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
}

// declareFanout declares the non-durable fanout exchange used for relaying.
func declareFanout(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange, // name
		amqp.ExchangeFanout,
		false, // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
}
