package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/events"
	amqp "github.com/streadway/amqp"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publishes product events to a durable RabbitMQ queue.
type Publisher struct {
	conn    *amqp.Connection
	channel Channel
	queue   string

	// amqp channels must not be used for concurrent publishes
	mu sync.Mutex
}

// NewPublisher connects to RabbitMQ, opens a channel and declares the queue.
func NewPublisher(cfg config.RabbitMQConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", cfg.Queue, err)
	}

	slog.Info("RabbitMQ publisher connected", slog.String("queue", cfg.Queue))

	return &Publisher{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

// NewPublisherWithChannel wraps an already opened channel.
func NewPublisherWithChannel(ch Channel, queue string) *Publisher {
	return &Publisher{channel: ch, queue: queue}
}

// PublishProductMessage publishes msg as persistent JSON on the default exchange.
func (p *Publisher) PublishProductMessage(_ context.Context, msg events.ProductMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		"",      // exchange: default exchange
		p.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(msg.Action),
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message to RabbitMQ: %w", err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (p *Publisher) Close() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ publisher: %v", errs)
	}
	return nil
}
