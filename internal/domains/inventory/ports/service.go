package ports

import (
	"context"
	"time"

	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
)

// Service defines the inventory use cases exposed to adapters (inbound/driving port).
type Service interface {
	// Load rebuilds the in-memory ledger and carts from persistence.
	Load(ctx context.Context) error
	GetBook(ctx context.Context, isbn string) (*invtypes.BookView, error)

	StockItem(ctx context.Context, input invtypes.StockItemInput) (*invtypes.StockEntryView, error)
	ReduceStock(ctx context.Context, input invtypes.StockAdjustmentInput) (*invtypes.StockEntryView, error)
	PutBackStock(ctx context.Context, input invtypes.StockAdjustmentInput) (*invtypes.StockEntryView, error)
	GetStock(ctx context.Context, isbn string) (*invtypes.StockEntryView, error)
	ListStock(ctx context.Context) ([]invtypes.StockEntryView, error)

	Search(ctx context.Context, text string) ([]invtypes.StockEntryView, error)
	Query(ctx context.Context, input invtypes.QueryInput) (*invtypes.QueryResult, error)

	AddToCart(ctx context.Context, input invtypes.CartItemInput) (*invtypes.CartView, error)
	RemoveFromCart(ctx context.Context, input invtypes.CartItemInput) (*invtypes.CartView, error)
	GetCart(ctx context.Context, shopper domain.ShopperID) (*invtypes.CartView, error)
	Checkout(ctx context.Context, shopper domain.ShopperID) (*domain.Receipt, error)
	GetReceipt(ctx context.Context, id string) (*domain.Receipt, error)
	// ReleaseCart returns every reserved unit of the shopper to the ledger and reports how many moved.
	ReleaseCart(ctx context.Context, shopper domain.ShopperID) (int, error)
	// ReleaseIdleCarts releases carts untouched for at least idleFor and reports how many were released.
	ReleaseIdleCarts(ctx context.Context, idleFor time.Duration) (int, error)
}
