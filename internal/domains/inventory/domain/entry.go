package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
)

// Holder tags which container owns a quantity entry.
type Holder string

const (
	HolderLedger Holder = "ledger"
	HolderCart   Holder = "cart"
)

// ShopperID identifies the actor a cart belongs to.
type ShopperID string

// Validate rejects blank identities.
func (s ShopperID) Validate() error {
	if strings.TrimSpace(string(s)) == "" {
		return ErrMissingShopper
	}
	return nil
}

var (
	ErrNilItem              = errors.New("item reference is nil")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrNotStocked           = errors.New("item is not stocked in the ledger")
	ErrInsufficientStock    = errors.New("not enough stock for the requested quantity")
	ErrNotInCart            = errors.New("item is not in the cart")
	ErrInsufficientReserved = errors.New("cart holds less than the requested quantity")
	ErrMissingShopper       = errors.New("shopper identity is required")
	ErrNoLedger             = errors.New("cart is not attached to a ledger")
	ErrUnknownSortOrder     = errors.New("unknown sort order")
)

// Entry pairs a book with a quantity inside exactly one ledger or cart.
type Entry struct {
	Book     *catalog.Book
	Quantity int
	Holder   Holder
}

// ISBN is shorthand for the entry's item identifier.
func (e Entry) ISBN() string {
	if e.Book == nil {
		return ""
	}
	return e.Book.ISBN
}

// Subtotal is price times quantity.
func (e Entry) Subtotal() decimal.Decimal {
	if e.Book == nil {
		return decimal.Zero
	}
	return e.Book.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

func (e Entry) clone() Entry {
	e.Book = e.Book.Clone()
	return e
}

func cloneEntries(entries []*Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.clone())
	}
	return out
}

func indexOf(entries []*Entry, isbn string) int {
	for i, e := range entries {
		if e.ISBN() == isbn {
			return i
		}
	}
	return -1
}
