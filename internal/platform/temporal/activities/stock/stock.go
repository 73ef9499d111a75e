package stock

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	catalogports "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	invapp "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	invports "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

const (
	// ReceiveStockActivityName upserts the book and adds the units to the ledger.
	ReceiveStockActivityName = "stock.activities.ReceiveStock"
	// WarmCatalogActivityName reads the stocked book back through the catalog so caches hold it.
	WarmCatalogActivityName = "stock.activities.WarmCatalog"
)

// BookIdentifier names a catalog entry.
type BookIdentifier struct {
	ISBN string
}

// Activities groups activities that operate on the inventory bounded context.
// They run in the API process because the ledger lives in its memory.
type Activities struct {
	service invports.Service
	catalog catalogports.Repository
}

// NewActivities wires the inventory collaborators into the Temporal activities bundle.
// service must not be the Temporal-backed orchestrator or intake would recurse.
func NewActivities(service invports.Service, catalog catalogports.Repository) *Activities {
	return &Activities{service: service, catalog: catalog}
}

// ReceiveStock stocks the item and returns the resulting ledger entry. The command always carries
// an idempotency key, so a retried attempt replays instead of adding the units twice.
func (a *Activities) ReceiveStock(ctx context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error) {
	logger := activity.GetLogger(ctx)
	isbn := input.Book.ISBN
	if a == nil || a.service == nil {
		logger.Error("stock receive activity not initialized", "isbn", isbn)
		return nil, errors.New("stock receive activity not initialized")
	}
	logger.Info("ReceiveStock activity started", "isbn", isbn, "quantity", input.Quantity)
	view, err := a.service.StockItem(ctx, input)
	if err != nil {
		logger.Error("ReceiveStock activity failed", "isbn", isbn, "error", err)
		if isPermanent(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), PermanentErrorType, err)
		}
		return nil, err
	}
	logger.Info("ReceiveStock activity completed", "isbn", isbn, "onHand", view.Quantity)
	return view, nil
}

// WarmCatalog loads the book through the catalog repository.
func (a *Activities) WarmCatalog(ctx context.Context, input BookIdentifier) error {
	logger := activity.GetLogger(ctx)
	if a == nil {
		logger.Error("catalog warm activity not initialized", "isbn", input.ISBN)
		return errors.New("catalog warm activity not initialized")
	}
	if a.catalog == nil {
		logger.Info("catalog not configured; skipping warm", "isbn", input.ISBN)
		return nil
	}

	var hb warmHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("WarmCatalog already completed in prior attempt; skipping", "isbn", input.ISBN)
		return nil
	}

	logger.Info("WarmCatalog activity started", "isbn", input.ISBN)
	proj, err := a.catalog.GetByISBN(ctx, input.ISBN)
	if err != nil {
		logger.Error("WarmCatalog failed to load book", "isbn", input.ISBN, "error", err)
		return err
	}
	if proj == nil || proj.Entity == nil {
		logger.Error("WarmCatalog missing book projection", "isbn", input.ISBN)
		return errors.New("book projection missing for warm")
	}
	activity.RecordHeartbeat(ctx, warmHeartbeat{Completed: true})
	logger.Info("WarmCatalog activity completed", "isbn", input.ISBN)
	return nil
}

// PermanentErrorType tags intake failures a retry cannot fix.
const PermanentErrorType = "StockIntakeRejected"

func isPermanent(err error) bool {
	return errors.Is(err, invapp.ErrInvalidInput) ||
		errors.Is(err, invapp.ErrConflict) ||
		errors.Is(err, invports.ErrIdempotencyConflict)
}

type warmHeartbeat struct {
	Completed bool
}
