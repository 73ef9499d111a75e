package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	invapp "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	stockactivities "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/activities/stock"
	stockworkflows "github.com/Apurer/go-gin-bookstore/internal/platform/temporal/workflows/stock"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalStockWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineStockWorkflows)(nil)
)

// TemporalStockWorkflows starts stock intake workflows on a Temporal cluster.
type TemporalStockWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalStockWorkflows wires a Temporal client into the orchestrator.
func NewTemporalStockWorkflows(c client.Client) *TemporalStockWorkflows {
	return &TemporalStockWorkflows{client: c, taskQueue: stockworkflows.StockIntakeTaskQueue}
}

// IntakeStock starts the Temporal workflow that receives a delivery and waits for its result.
func (o *TemporalStockWorkflows) IntakeStock(ctx context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal stock workflows not configured")
	}
	if err := validateIntake(input); err != nil {
		return nil, err
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildStockIntakeWorkflowID(input, traceComponent)
	// Activity retries replay through the idempotency store instead of stocking twice.
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		input.IdempotencyKey = workflowID
	}
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		stockworkflows.StockIntakeWorkflowName,
		stockworkflows.StockIntakeWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var view invtypes.StockEntryView
			if err := existingRun.Get(ctx, &view); err != nil {
				return nil, translateWorkflowError(err)
			}
			return &view, nil
		}
		return nil, err
	}
	var view invtypes.StockEntryView
	if err := run.Get(ctx, &view); err != nil {
		return nil, translateWorkflowError(err)
	}
	return &view, nil
}

// InlineStockWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineStockWorkflows struct {
	service ports.Service
}

// NewInlineStockWorkflows wraps the inventory service for synchronous execution.
func NewInlineStockWorkflows(service ports.Service) *InlineStockWorkflows {
	return &InlineStockWorkflows{service: service}
}

// IntakeStock delegates to the application service without durable orchestration.
func (o *InlineStockWorkflows) IntakeStock(ctx context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline stock workflows not configured")
	}
	return o.service.StockItem(ctx, input)
}

// validateIntake rejects malformed commands before a workflow is started, so callers see
// the same input errors the service would return.
func validateIntake(input invtypes.StockItemInput) error {
	if _, err := input.Book.ToDomain(); err != nil {
		return fmt.Errorf("%w: %w", invapp.ErrInvalidInput, err)
	}
	if input.Quantity <= 0 {
		return fmt.Errorf("%w: %w", invapp.ErrInvalidInput, domain.ErrInvalidQuantity)
	}
	return nil
}

func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() == stockactivities.PermanentErrorType {
		return fmt.Errorf("%w: %s", invapp.ErrConflict, appErr.Message())
	}
	return err
}

func buildStockIntakeWorkflowID(input invtypes.StockItemInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("stock-intake-idem-%s", hashIdempotencyKey(key))
	}
	isbn := strings.TrimSpace(input.Book.ISBN)
	return fmt.Sprintf("stock-intake-%s-%s", isbn, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceComponent := workflowTraceID(ctx); traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
