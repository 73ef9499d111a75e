package bookstoreserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	invhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/http/mapper"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	invports "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

// StockAPI wires HTTP transport with the ledger operations and the intake workflow.
type StockAPI struct {
	service   invports.Service
	workflows invports.WorkflowOrchestrator
}

// NewStockAPI creates a StockAPI. A nil orchestrator makes intake call the service directly.
func NewStockAPI(service invports.Service, workflows invports.WorkflowOrchestrator) StockAPI {
	return StockAPI{service: service, workflows: workflows}
}

// Get /v1/stock
// List the ledger in insertion order
func (api *StockAPI) ListStock(c *gin.Context) {
	entries, err := api.service.ListStock(c.Request.Context())
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromStockEntries(entries))
}

// Post /v1/stock
// Receive units of a book into the ledger
func (api *StockAPI) IntakeStock(c *gin.Context) {
	var payload invhttpmapper.StockIntake
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	entry, err := api.intake(c.Request.Context(), invhttpmapper.ToStockItemInput(payload, key))
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromStockEntry(entry))
}

func (api *StockAPI) intake(ctx context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
	if api.workflows != nil {
		return api.workflows.IntakeStock(ctx, input)
	}
	return api.service.StockItem(ctx, input)
}

// Get /v1/stock/:isbn
// Find the ledger entry for a book
func (api *StockAPI) GetStock(c *gin.Context) {
	entry, err := api.service.GetStock(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromStockEntry(entry))
}

// Post /v1/stock/:isbn/reduce
// Take units out of the ledger
func (api *StockAPI) ReduceStock(c *gin.Context) {
	input, ok := bindAdjustment(c)
	if !ok {
		return
	}
	entry, err := api.service.ReduceStock(c.Request.Context(), input)
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromStockEntry(entry))
}

// Post /v1/stock/:isbn/restock
// Put units back into an existing ledger entry
func (api *StockAPI) RestockStock(c *gin.Context) {
	input, ok := bindAdjustment(c)
	if !ok {
		return
	}
	entry, err := api.service.PutBackStock(c.Request.Context(), input)
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromStockEntry(entry))
}

func bindAdjustment(c *gin.Context) (invtypes.StockAdjustmentInput, bool) {
	var payload invhttpmapper.QuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return invtypes.StockAdjustmentInput{}, false
	}
	return invtypes.StockAdjustmentInput{ISBN: c.Param("isbn"), Quantity: payload.Quantity}, true
}
