package workflows

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	catalogmemory "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/adapters/memory"
	invmemory "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/memory"
	invapp "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	stockactivities "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/activities/stock"
	stockworkflows "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/workflows/stock"
)

func kiteRunner(qty int, key string) invtypes.StockItemInput {
	return invtypes.StockItemInput{
		Book:           invtypes.BookInput{ISBN: "1573222453", Title: "The Kite Runner", Price: decimal.RequireFromString("22.00")},
		Quantity:       qty,
		IdempotencyKey: key,
	}
}

func TestInlineStockWorkflows_DelegatesToService(t *testing.T) {
	svc := invapp.NewService(catalogmemory.NewRepository(), invmemory.NewStore())
	orchestrator := NewInlineStockWorkflows(svc)

	view, err := orchestrator.IntakeStock(context.Background(), kiteRunner(3, ""))
	require.NoError(t, err)
	assert.Equal(t, 3, view.Quantity)
}

func TestTemporalStockWorkflows_StartsIntakeWorkflow(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	c.On("ExecuteWorkflow", mock.Anything,
		mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
			return opts.TaskQueue == stockworkflows.StockIntakeTaskQueue &&
				opts.ID == "stock-intake-idem-"+hashIdempotencyKey("delivery-7")
		}),
		stockworkflows.StockIntakeWorkflowName,
		mock.MatchedBy(func(in stockworkflows.StockIntakeWorkflowInput) bool {
			return in.Command.IdempotencyKey == "delivery-7" && in.Command.Quantity == 4
		}),
	).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		view := args.Get(1).(*invtypes.StockEntryView)
		view.Quantity = 4
	}).Return(nil)

	view, err := NewTemporalStockWorkflows(c).IntakeStock(context.Background(), kiteRunner(4, "delivery-7"))
	require.NoError(t, err)
	assert.Equal(t, 4, view.Quantity)
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func TestTemporalStockWorkflows_AssignsKeyWhenMissing(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	var started stockworkflows.StockIntakeWorkflowInput
	var startedID string
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, stockworkflows.StockIntakeWorkflowName, mock.Anything).
		Run(func(args mock.Arguments) {
			startedID = args.Get(1).(client.StartWorkflowOptions).ID
			started = args.Get(3).(stockworkflows.StockIntakeWorkflowInput)
		}).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).Return(nil)

	_, err := NewTemporalStockWorkflows(c).IntakeStock(context.Background(), kiteRunner(1, ""))
	require.NoError(t, err)
	assert.Contains(t, startedID, "stock-intake-1573222453-")
	assert.Equal(t, startedID, started.Command.IdempotencyKey)
}

func TestTemporalStockWorkflows_JoinsRunningWorkflow(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("started", "req-1", "run-1"))
	c.On("GetWorkflow", mock.Anything, "stock-intake-idem-"+hashIdempotencyKey("delivery-7"), "run-1").Return(run)
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*invtypes.StockEntryView).Quantity = 9
	}).Return(nil)

	view, err := NewTemporalStockWorkflows(c).IntakeStock(context.Background(), kiteRunner(4, "delivery-7"))
	require.NoError(t, err)
	assert.Equal(t, 9, view.Quantity)
}

func TestTemporalStockWorkflows_ValidatesBeforeStarting(t *testing.T) {
	c := &mocks.Client{}
	_, err := NewTemporalStockWorkflows(c).IntakeStock(context.Background(), kiteRunner(0, "delivery-7"))
	require.ErrorIs(t, err, invapp.ErrInvalidInput)
	c.AssertNotCalled(t, "ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTranslateWorkflowError(t *testing.T) {
	rejected := temporal.NewNonRetryableApplicationError("idempotency conflict", stockactivities.PermanentErrorType, nil)
	require.ErrorIs(t, translateWorkflowError(rejected), invapp.ErrConflict)

	other := temporal.NewApplicationError("boom", "Other")
	assert.Equal(t, other, translateWorkflowError(other))
}
