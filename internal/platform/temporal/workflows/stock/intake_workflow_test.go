package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	stockactivities "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/activities/stock"
)

func intakeInput() StockIntakeWorkflowInput {
	return StockIntakeWorkflowInput{
		Command: invtypes.StockItemInput{
			Book:           invtypes.BookInput{ISBN: "1573222453", Title: "The Kite Runner", Price: decimal.RequireFromString("22.00")},
			Quantity:       4,
			IdempotencyKey: "delivery-7",
		},
		TraceID: "trace-1",
	}
}

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(StockIntakeWorkflow, workflow.RegisterOptions{Name: StockIntakeWorkflowName})
	return env
}

func TestStockIntakeWorkflow_ReceivesAndWarms(t *testing.T) {
	env := newEnv(t)
	warmed := ""
	env.RegisterActivityWithOptions(func(_ context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
		return &invtypes.StockEntryView{Book: &catalog.Book{ISBN: input.Book.ISBN, Title: input.Book.Title}, Quantity: input.Quantity + 1}, nil
	}, activity.RegisterOptions{Name: stockactivities.ReceiveStockActivityName})
	env.RegisterActivityWithOptions(func(_ context.Context, input stockactivities.BookIdentifier) error {
		warmed = input.ISBN
		return nil
	}, activity.RegisterOptions{Name: stockactivities.WarmCatalogActivityName})

	env.ExecuteWorkflow(StockIntakeWorkflowName, intakeInput())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var view invtypes.StockEntryView
	require.NoError(t, env.GetWorkflowResult(&view))
	assert.Equal(t, 5, view.Quantity)
	assert.Equal(t, "1573222453", warmed)
}

func TestStockIntakeWorkflow_WarmFailureDoesNotFailIntake(t *testing.T) {
	env := newEnv(t)
	env.RegisterActivityWithOptions(func(_ context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
		return &invtypes.StockEntryView{Quantity: input.Quantity}, nil
	}, activity.RegisterOptions{Name: stockactivities.ReceiveStockActivityName})
	env.RegisterActivityWithOptions(func(context.Context, stockactivities.BookIdentifier) error {
		return errors.New("cache offline")
	}, activity.RegisterOptions{Name: stockactivities.WarmCatalogActivityName})

	env.ExecuteWorkflow(StockIntakeWorkflowName, intakeInput())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
}

func TestStockIntakeWorkflow_RejectedIntakeFails(t *testing.T) {
	env := newEnv(t)
	calls := 0
	env.RegisterActivityWithOptions(func(context.Context, invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
		calls++
		return nil, temporal.NewNonRetryableApplicationError("idempotency conflict", stockactivities.PermanentErrorType, nil)
	}, activity.RegisterOptions{Name: stockactivities.ReceiveStockActivityName})
	env.RegisterActivityWithOptions(func(context.Context, stockactivities.BookIdentifier) error {
		return nil
	}, activity.RegisterOptions{Name: stockactivities.WarmCatalogActivityName})

	env.ExecuteWorkflow(StockIntakeWorkflowName, intakeInput())

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, stockactivities.PermanentErrorType, appErr.Type())
	assert.Equal(t, 1, calls)
}
