package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Connector opens a fresh broker channel.
type Connector func() (Channel, error)

// Dial returns a Connector that opens a connection and a channel on it. Closing
// the channel also closes its connection.
func Dial(url string) Connector {
	return func() (Channel, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to open a channel: %w", err)
		}
		return &connChannel{Channel: ch, conn: conn}, nil
	}
}

type connChannel struct {
	*amqp.Channel
	conn *amqp.Connection
}

func (c *connChannel) Close() error {
	_ = c.Channel.Close()
	return c.conn.Close()
}

// AMQPPublisher publishes events as persistent messages on a durable queue. A
// failed publish drops the channel and retries on a new one with exponential
// backoff.
type AMQPPublisher struct {
	mu      sync.Mutex
	connect Connector
	ch      Channel

	queue           string
	maxElapsed      time.Duration
	maxRetries      int
	initialInterval time.Duration
	log             *slog.Logger
}

func NewAMQPPublisher(connect Connector, queue string, maxElapsed time.Duration, maxRetries int, log *slog.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{
		connect:         connect,
		queue:           queue,
		maxElapsed:      maxElapsed,
		maxRetries:      maxRetries,
		initialInterval: backoff.DefaultInitialInterval,
		log:             log,
	}
	if _, err := p.channel(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}

	operation := func() error {
		ch, err := p.channel()
		if err != nil {
			return err
		}
		if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
			p.reset(ch)
			return err
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		p.log.Warn("Retrying event publish", "type", event.Type, "id", event.ID, "next", next, "error", err)
	}

	if err := backoff.RetryNotify(operation, p.backOff(ctx), notify); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	p.log.Debug("Event published", "type", event.Type, "id", event.ID, "recipients", len(event.UserIDs))
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}

func (p *AMQPPublisher) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initialInterval
	b.MaxElapsedTime = p.maxElapsed
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(p.maxRetries, 0))), ctx)
}

// channel returns the open channel, connecting and declaring the queue first
// when there is none.
func (p *AMQPPublisher) channel() (Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		return p.ch, nil
	}
	ch, err := p.connect()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
	}
	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) reset(ch Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == ch {
		_ = ch.Close()
		p.ch = nil
	}
}
