package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/platform/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event is a domain event published after the change it describes has been committed.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
	Close() error
}

var errPublisherClosed = errors.New("publisher is closed")

// RabbitMQPublisher sends events to a durable topic exchange. Routing keys are event types.
// A dropped connection is re-dialed on the next publish.
type RabbitMQPublisher struct {
	mu       sync.Mutex
	url      string
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	closed   bool
	log      *logger.Logger
}

func NewRabbitMQPublisher(url, exchange string, log *logger.Logger) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{url: url, exchange: exchange, log: log}
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	log.Info("connected to RabbitMQ", "exchange", exchange)
	return p, nil
}

// connectLocked dials, opens a channel and declares the exchange. Callers hold p.mu
// or own p exclusively.
func (p *RabbitMQPublisher) connectLocked() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn, p.channel = conn, channel
	return nil
}

// ensureChannelLocked re-dials when the broker dropped the connection or channel.
func (p *RabbitMQPublisher) ensureChannelLocked() error {
	if p.closed {
		return errPublisherClosed
	}
	if p.channel != nil && !p.channel.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return nil
	}
	p.closeLocked()
	if err := p.connectLocked(); err != nil {
		return err
	}
	p.log.Info("reconnected to RabbitMQ", "exchange", p.exchange)
	return nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(Event{Type: routingKey, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureChannelLocked(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	err = p.channel.PublishWithContext(publishCtx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closeLocked()
	return nil
}

func (p *RabbitMQPublisher) closeLocked() {
	if p.channel != nil && !p.channel.IsClosed() {
		if err := p.channel.Close(); err != nil {
			p.log.Error("failed to close RabbitMQ channel", "error", err)
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			p.log.Error("failed to close RabbitMQ connection", "error", err)
		}
	}
	p.channel, p.conn = nil, nil
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
