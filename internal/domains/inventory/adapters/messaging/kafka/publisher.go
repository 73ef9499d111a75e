package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Config selects the brokers and topics for inventory events.
type Config struct {
	Brokers    []string
	StockTopic string
	CartTopic  string
	Acks       string
	Retries    int
}

// Publisher sends inventory events to Kafka through a synchronous producer.
type Publisher struct {
	producer   sarama.SyncProducer
	stockTopic string
	cartTopic  string
	logger     *slog.Logger
}

// Dial creates an idempotent sync producer for cfg.Brokers.
func Dial(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = cfg.Retries
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	switch cfg.Acks {
	case "0":
		config.Producer.RequiredAcks = sarama.NoResponse
	case "1":
		config.Producer.RequiredAcks = sarama.WaitForLocal
	default:
		config.Producer.RequiredAcks = sarama.WaitForAll
	}
	// Idempotent producers must wait for all replicas.
	if config.Producer.RequiredAcks != sarama.WaitForAll {
		config.Producer.Idempotent = false
		config.Net.MaxOpenRequests = 5
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewPublisher(producer, cfg.StockTopic, cfg.CartTopic, logger), nil
}

// NewPublisher wraps an existing producer. Blank topics fall back to the defaults.
func NewPublisher(producer sarama.SyncProducer, stockTopic, cartTopic string, logger *slog.Logger) *Publisher {
	if strings.TrimSpace(stockTopic) == "" {
		stockTopic = "bookstore.inventory.stock"
	}
	if strings.TrimSpace(cartTopic) == "" {
		cartTopic = "bookstore.inventory.carts"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{producer: producer, stockTopic: stockTopic, cartTopic: cartTopic, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	message := &sarama.ProducerMessage{
		Topic: p.topicFor(event),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.EventName())},
			{Key: []byte("event-id"), Value: []byte(uuid.NewString())},
			{Key: []byte("timestamp"), Value: []byte(event.OccurredAt().UTC().Format(time.RFC3339Nano))},
		},
	}
	if key := event.PartitionKey(); key != "" {
		message.Key = sarama.StringEncoder(key)
	}
	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventName(), err)
	}
	p.logger.DebugContext(ctx, "event published to kafka",
		slog.String("topic", message.Topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("event", event.EventName()),
	)
	return nil
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

func (p *Publisher) topicFor(event domain.Event) string {
	if strings.HasPrefix(event.EventName(), "inventory.cart.") {
		return p.cartTopic
	}
	return p.stockTopic
}
