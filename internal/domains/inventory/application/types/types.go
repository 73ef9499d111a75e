package types

import (
	"time"

	"github.com/shopspring/decimal"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/projection"
)

// ContributorInput names one credited author.
type ContributorInput struct {
	FirstName string
	LastName  string
}

// BookInput carries the catalog fields of a stock intake.
type BookInput struct {
	ISBN         string
	Title        string
	Contributors []ContributorInput
	Publisher    string
	Genre        string
	Price        decimal.Decimal
	Description  string
	CoverURL     string
	PublishedOn  string
}

// ToDomain materializes a validated catalog book.
func (b BookInput) ToDomain() (*catalog.Book, error) {
	contributors := make([]catalog.Contributor, 0, len(b.Contributors))
	for _, c := range b.Contributors {
		contributors = append(contributors, catalog.Contributor{FirstName: c.FirstName, LastName: c.LastName})
	}
	book, err := catalog.NewBook(b.ISBN, b.Title, contributors, b.Publisher, b.Genre, b.Price)
	if err != nil {
		return nil, err
	}
	book.Description = b.Description
	book.CoverURL = b.CoverURL
	book.PublishedOn = b.PublishedOn
	return book, nil
}

// StockItemInput stocks Quantity units of Book. IdempotencyKey makes retries safe.
type StockItemInput struct {
	Book           BookInput
	Quantity       int
	IdempotencyKey string
}

// StockAdjustmentInput reduces or restocks an already stocked item.
type StockAdjustmentInput struct {
	ISBN     string
	Quantity int
}

// CartItemInput moves units between the ledger and a shopper's cart.
type CartItemInput struct {
	Shopper  domain.ShopperID
	ISBN     string
	Quantity int
}

// QueryInput is the transport-neutral form of a catalog query.
type QueryInput struct {
	Text       string
	Authors    []string
	Genres     []string
	Publishers []string
	MaxPrice   *decimal.Decimal
	Sort       string
}

// StockEntryView is a ledger entry as seen by adapters.
type StockEntryView struct {
	Book     *catalog.Book
	Quantity int
}

// BookView is a catalog book together with its on-hand quantity.
type BookView struct {
	Book     *catalog.Book
	OnHand   int
	Metadata projection.Metadata
}

// QueryResult is the ordered match list plus the facets of the text-search result.
type QueryResult struct {
	Items  []StockEntryView
	Facets domain.Facets
}

// CartLineView is one reserved line.
type CartLineView struct {
	Book     *catalog.Book
	Quantity int
	Subtotal decimal.Decimal
}

// CartView summarizes a shopper's cart.
type CartView struct {
	Shopper       domain.ShopperID
	Lines         []CartLineView
	TotalQuantity int
	Total         decimal.Decimal
	UpdatedAt     time.Time
}

// StockViews converts domain entries into views.
func StockViews(entries []domain.Entry) []StockEntryView {
	views := make([]StockEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, StockEntryView{Book: e.Book, Quantity: e.Quantity})
	}
	return views
}

// NewCartView snapshots a cart.
func NewCartView(cart *domain.Cart) *CartView {
	lines := cart.Entries()
	view := &CartView{
		Shopper:   cart.Owner(),
		Lines:     make([]CartLineView, 0, len(lines)),
		Total:     decimal.Zero,
		UpdatedAt: cart.UpdatedAt(),
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, CartLineView{Book: line.Book, Quantity: line.Quantity, Subtotal: line.Subtotal()})
		view.TotalQuantity += line.Quantity
		view.Total = view.Total.Add(line.Subtotal())
	}
	return view
}

// EmptyCartView is what a shopper without a cart sees.
func EmptyCartView(shopper domain.ShopperID) *CartView {
	return &CartView{Shopper: shopper, Lines: []CartLineView{}, Total: decimal.Zero}
}
