package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	conn      io.Closer
	ch        amqpChannel
	queueName string
}

// NewAMQPPublisher connects to url and declares a durable queue.
func NewAMQPPublisher(url, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newAMQPPublisher(conn, ch, queueName)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return p, nil
}

func newAMQPPublisher(conn io.Closer, ch amqpChannel, queueName string) (*AMQPPublisher, error) {
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, queueName: queueName}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    e.ID.String(),
			Type:         string(e.Type),
			Timestamp:    e.OccurredAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.ID, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return errors.Join(p.ch.Close(), p.conn.Close())
}
