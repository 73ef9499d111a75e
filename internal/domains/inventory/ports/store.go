package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
)

var ErrNotFound = errors.New("inventory record not found")

// StockLevel is the persisted on-hand quantity of one ledger entry.
type StockLevel struct {
	ISBN      string
	Quantity  int
	UpdatedAt time.Time
}

// CartLine persists a reserved line with the price captured when it was reserved.
type CartLine struct {
	ISBN      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CartSnapshot is the persisted form of a shopper's cart.
type CartSnapshot struct {
	Owner     domain.ShopperID
	Lines     []CartLine
	UpdatedAt time.Time
}

// StockStore persists ledger quantities.
type StockStore interface {
	// SaveStockLevel upserts the quantity; zero deletes the level.
	SaveStockLevel(ctx context.Context, isbn string, quantity int) error
	// ListStockLevels returns levels in ledger order.
	ListStockLevels(ctx context.Context) ([]StockLevel, error)
}

// CartStore persists open carts.
type CartStore interface {
	SaveCart(ctx context.Context, snapshot CartSnapshot) error
	DeleteCart(ctx context.Context, owner domain.ShopperID) error
	ListCarts(ctx context.Context) ([]CartSnapshot, error)
}

// ReceiptStore persists checkout receipts.
type ReceiptStore interface {
	// SaveReceipt stores the receipt and drops the owner's open cart snapshot in one transaction.
	SaveReceipt(ctx context.Context, receipt domain.Receipt) error
	GetReceipt(ctx context.Context, id string) (*domain.Receipt, error)
}

// Store groups the persistence needs of the inventory context.
type Store interface {
	StockStore
	CartStore
	ReceiptStore
}

// SnapshotCart converts a domain cart into its persisted form.
func SnapshotCart(cart *domain.Cart) CartSnapshot {
	entries := cart.Entries()
	snapshot := CartSnapshot{Owner: cart.Owner(), Lines: make([]CartLine, 0, len(entries)), UpdatedAt: cart.UpdatedAt()}
	for _, e := range entries {
		snapshot.Lines = append(snapshot.Lines, CartLine{ISBN: e.ISBN(), Quantity: e.Quantity, UnitPrice: e.Book.Price})
	}
	return snapshot
}
