package ports

import (
	"context"

	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
)

// WorkflowOrchestrator exposes durable workflow operations required by the inventory bounded context.
type WorkflowOrchestrator interface {
	IntakeStock(ctx context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error)
}
