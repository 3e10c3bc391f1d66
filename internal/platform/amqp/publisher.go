// Package amqp publishes progress events to a RabbitMQ topic exchange so
// other services (notifications, analytics) can react to them.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/snapsolve/snapsolve/internal/events"
)

// DefaultPublishTimeout bounds a single publish.
const DefaultPublishTimeout = 2 * time.Second

// channel is the subset of *amqp.Channel used by Publisher.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements events.EventHandler by publishing each event to a
// topic exchange, routed by event type.
type Publisher struct {
	conn     *amqp.Connection
	exchange string
	timeout  time.Duration
	logger   *slog.Logger

	// mu serializes publishes; AMQP channels are not safe for concurrent use.
	mu sync.Mutex
	ch channel
}

var _ events.EventHandler = (*Publisher)(nil)

// Dial connects to url and declares exchange as a durable topic exchange.
func Dial(url, exchange string, logger *slog.Logger) (*Publisher, error) {
	if exchange == "" {
		return nil, errors.New("exchange cannot be empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	p := newPublisher(ch, exchange, logger)
	p.conn = conn
	logger.Info("amqp event publisher ready", "exchange", exchange)
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *slog.Logger) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		timeout:  DefaultPublishTimeout,
		logger:   logger.With("component", "amqp_publisher"),
	}
}

// HandleEvent implements events.EventHandler.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	p.mu.Unlock()

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "event published", "event_id", event.ID, "event_type", event.Type)
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
