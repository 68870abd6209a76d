package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishPersistent sends body as a persistent message. An empty exchange
// routes straight to the queue named by key.
func publishPersistent(ctx context.Context, ch *amqp.Channel, exchange, key, contentType string, body []byte, headers amqp.Table) error {
	if contentType == "" {
		contentType = "application/json"
	}
	err := ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType:  contentType,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
	})
	if err != nil {
		return fmt.Errorf("publish to %q/%q: %w", exchange, key, err)
	}
	return nil
}

// Publisher owns a channel dedicated to outbound messages.
type Publisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

// PublishJob enqueues an extraction job under routingKey as its first attempt.
func (p *Publisher) PublishJob(ctx context.Context, routingKey string, msg []byte) error {
	return publishPersistent(ctx, p.channel, p.exchange, routingKey, "", msg, amqp.Table{AttemptHeader: int32(1)})
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

type StatusPublisher struct {
	pub        *Publisher
	routingKey string
}

// NewStatusPublisher routes status updates through the exchange with
// routingKey, the status queue's binding key.
func NewStatusPublisher(pub *Publisher, routingKey string) *StatusPublisher {
	return &StatusPublisher{pub: pub, routingKey: routingKey}
}

func (sp *StatusPublisher) PublishStatus(ctx context.Context, msg []byte) error {
	return publishPersistent(ctx, sp.pub.channel, sp.pub.exchange, sp.routingKey, "", msg, nil)
}

type DLQPublisher struct {
	pub   *Publisher
	queue string
}

func NewDLQPublisher(pub *Publisher, dlqQueue string) *DLQPublisher {
	return &DLQPublisher{pub: pub, queue: dlqQueue}
}

func (dp *DLQPublisher) PublishToDLQ(ctx context.Context, msg []byte, reason string) error {
	return publishPersistent(ctx, dp.pub.channel, "", dp.queue, "", msg, amqp.Table{"x-dlq-reason": reason})
}
