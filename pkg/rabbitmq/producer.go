// Package rabbitmq publishes wallet domain events to a topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const RoutingKeyTransactionsSynced = "transactions.synced"

// SyncCompletedEvent is published after a connection's transactions were ingested.
type SyncCompletedEvent struct {
	UserID          uuid.UUID `json:"user_id"`
	ItemID          string    `json:"item_id"`
	AccountsCreated int       `json:"accounts_created"`
	Fetched         int       `json:"fetched"`
	Inserted        int       `json:"inserted"`
	Timestamp       time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishSyncCompleted(ctx context.Context, event SyncCompletedEvent) error
	Close()
}

type EventProducer struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NoopPublisher is used when no broker is configured or it is unreachable at startup.
type NoopPublisher struct {
	Logger *zap.Logger
}

func (p *NoopPublisher) PublishSyncCompleted(ctx context.Context, event SyncCompletedEvent) error {
	if p.Logger != nil {
		p.Logger.Debug("Event publish skipped",
			zap.String("routing_key", RoutingKeyTransactionsSynced),
			zap.String("item_id", event.ItemID),
		)
	}
	return nil
}

func (p *NoopPublisher) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewEventProducer(amqpURL, exchange string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &EventProducer{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *EventProducer) PublishSyncCompleted(ctx context.Context, event SyncCompletedEvent) error {
	return p.publish(ctx, RoutingKeyTransactionsSynced, event)
}

func (p *EventProducer) publish(ctx context.Context, routingKey string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         payload,
	})
}

func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NewPublisher connects to RabbitMQ when a URL is configured and falls back to
// a no-op publisher otherwise.
func NewPublisher(amqpURL, exchange string, logger *zap.Logger) Publisher {
	if strings.TrimSpace(amqpURL) == "" {
		logger.Info("RabbitMQ not configured, sync events disabled")
		return &NoopPublisher{Logger: logger}
	}
	producer, err := NewEventProducer(amqpURL, exchange)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, sync events disabled", zap.Error(err))
		return &NoopPublisher{Logger: logger}
	}
	logger.Info("RabbitMQ publisher ready", zap.String("exchange", exchange))
	return producer
}
