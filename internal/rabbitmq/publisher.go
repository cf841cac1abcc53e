package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher publishes audit and alert events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// NewPublisher builds a RabbitMQ publisher or a noop publisher when AMQP is
// disabled or unreachable.
func NewPublisher(log *zap.SugaredLogger, amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		log.Infow("rabbitmq disabled, using noop", "reason", "empty amqp url")
		return noopPublisher{log: log, reason: "empty amqp url"}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Warnw("rabbitmq disabled, using noop", "error", err)
		return noopPublisher{log: log, reason: err.Error()}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Warnw("rabbitmq disabled, using noop", "error", err)
		_ = conn.Close()
		return noopPublisher{log: log, reason: err.Error()}
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		log.Warnw("rabbitmq disabled, using noop", "error", err)
		_ = ch.Close()
		_ = conn.Close()
		return noopPublisher{log: log, reason: err.Error()}
	}

	log.Infow("rabbitmq connected", "exchange", exchange)
	return &amqpPublisher{log: log, conn: conn, ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	log      *zap.SugaredLogger
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.log.Warnw("rabbitmq publish failed", "routing_key", routingKey, "error", err)
	}
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct {
	log    *zap.SugaredLogger
	reason string
}

func (n noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	n.log.Debugw("rabbitmq noop publish", "routing_key", routingKey)
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
