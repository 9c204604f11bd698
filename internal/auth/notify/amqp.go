package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier hands delivery jobs to an external email/SMS worker through a
// durable queue.
type AMQPNotifier struct {
	conn    *amqp.Connection
	channel publisher
	closer  func() error
	queue   string
}

func NewAMQPNotifier(url, queueName string) (*AMQPNotifier, error) {
	const op = "notify.amqp.New"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &AMQPNotifier{
		conn:    conn,
		channel: ch,
		closer:  ch.Close,
		queue:   q.Name,
	}, nil
}

func (n *AMQPNotifier) SendVerificationCode(ctx context.Context, msg Message) error {
	msg.Purpose = PurposeVerification
	return n.publish(ctx, msg)
}

func (n *AMQPNotifier) SendPasswordReset(ctx context.Context, msg Message) error {
	msg.Purpose = PurposePasswordReset
	return n.publish(ctx, msg)
}

func (n *AMQPNotifier) publish(ctx context.Context, msg Message) error {
	const op = "notify.amqp.publish"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = n.channel.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.closer != nil {
		_ = n.closer()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
