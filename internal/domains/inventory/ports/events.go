package ports

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
)

// EventPublisher announces committed inventory changes to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
