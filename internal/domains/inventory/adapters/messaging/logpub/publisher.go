package logpub

import (
	"context"
	"log/slog"

	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher writes events to the structured log. It is the default when no broker is configured.
type Publisher struct {
	logger *slog.Logger
}

// New builds a log publisher; nil uses slog.Default.
func New(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	p.logger.InfoContext(ctx, "inventory event",
		slog.String("event", event.EventName()),
		slog.String("key", event.PartitionKey()),
		slog.Time("occurredAt", event.OccurredAt()),
		slog.Any("payload", event),
	)
	return nil
}
