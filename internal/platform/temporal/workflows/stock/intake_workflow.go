package stock

import (
	"go.temporal.io/sdk/workflow"

	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-bookstore/internal/platform/temporal/sequences"
)

const (
	// StockIntakeWorkflowName is the public identifier for registering the workflow.
	StockIntakeWorkflowName = "stock.workflows.Intake"
	// StockIntakeTaskQueue is the queue consumed by the worker processing intake workflows.
	StockIntakeTaskQueue = "STOCK_INTAKE"
)

// StockIntakeWorkflowInput captures the payload required to receive stock.
type StockIntakeWorkflowInput struct {
	Command invtypes.StockItemInput
	TraceID string
}

// StockIntakeWorkflow orchestrates the activities needed to put a delivery on the shelf.
func StockIntakeWorkflow(ctx workflow.Context, input StockIntakeWorkflowInput) (*invtypes.StockEntryView, error) {
	logger := workflow.GetLogger(ctx)
	isbn := input.Command.Book.ISBN
	logger.Info("StockIntakeWorkflow started", withTraceID(input.TraceID, "isbn", isbn, "quantity", input.Command.Quantity)...)
	view, err := sequences.RunStockIntakeSequence(ctx, input.Command)
	if err != nil {
		logger.Error("StockIntakeWorkflow failed", withTraceID(input.TraceID, "isbn", isbn, "error", err)...)
		return nil, err
	}
	logger.Info("StockIntakeWorkflow completed", withTraceID(input.TraceID, "isbn", isbn, "onHand", view.Quantity)...)
	return view, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
