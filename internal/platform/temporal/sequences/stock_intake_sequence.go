package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	stockactivities "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/activities/stock"
)

// StockIntakeActivityTaskQueue is served by the API process, which owns the ledger.
const StockIntakeActivityTaskQueue = "STOCK_INTAKE_ACTIVITIES"

// RunStockIntakeSequence executes the ordered set of activities needed to receive stock.
func RunStockIntakeSequence(ctx workflow.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
	logger := workflow.GetLogger(ctx)
	isbn := input.Book.ISBN
	logger.Info("stock intake sequence started", "isbn", isbn)
	receiveOptions := workflow.ActivityOptions{
		TaskQueue:           StockIntakeActivityTaskQueue,
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	warmOptions := workflow.ActivityOptions{
		TaskQueue:           StockIntakeActivityTaskQueue,
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	var view invtypes.StockEntryView
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, receiveOptions), stockactivities.ReceiveStockActivityName, input).Get(ctx, &view)
	if err != nil {
		logger.Error("stock intake sequence failed", "isbn", isbn, "error", err)
		return nil, err
	}
	logger.Info("stock intake sequence received", "isbn", isbn, "onHand", view.Quantity)

	// A cold cache only costs latency, so a failed warm does not fail the intake.
	warmInput := stockactivities.BookIdentifier{ISBN: isbn}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, warmOptions), stockactivities.WarmCatalogActivityName, warmInput).Get(ctx, nil); err != nil {
		logger.Warn("stock intake sequence warm failed", "isbn", isbn, "error", err)
	} else {
		logger.Info("stock intake sequence warmed catalog", "isbn", isbn)
	}
	return &view, nil
}
