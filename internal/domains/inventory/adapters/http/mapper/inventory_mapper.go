package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalog "github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	"github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
)

// Contributor is the HTTP representation of a credited author.
type Contributor struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName"`
}

// Book is the HTTP representation of a catalog book. Prices travel as fixed two-decimal strings.
type Book struct {
	ISBN         string        `json:"isbn"`
	Title        string        `json:"title"`
	Contributors []Contributor `json:"contributors"`
	Authors      []string      `json:"authors"`
	Publisher    string        `json:"publisher,omitempty"`
	Genre        string        `json:"genre,omitempty"`
	Price        string        `json:"price"`
	Description  string        `json:"description,omitempty"`
	CoverURL     string        `json:"coverUrl,omitempty"`
	PublishedOn  string        `json:"publishedOn,omitempty"`
}

// BookDetail is a catalog book with its on-hand quantity.
type BookDetail struct {
	Book
	OnHand    int       `json:"onHand"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// StockEntry is one ledger line.
type StockEntry struct {
	Book     Book `json:"book"`
	Quantity int  `json:"quantity"`
}

// StockIntake is the inbound payload of POST /v1/stock.
type StockIntake struct {
	ISBN         string          `json:"isbn"`
	Title        string          `json:"title"`
	Contributors []Contributor   `json:"contributors"`
	Publisher    string          `json:"publisher"`
	Genre        string          `json:"genre"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	CoverURL     string          `json:"coverUrl"`
	PublishedOn  string          `json:"publishedOn"`
	Quantity     int             `json:"quantity"`
}

// QuantityRequest carries a bare quantity for reduce and restock.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartItemRequest is the inbound payload of POST /v1/cart/items.
type CartItemRequest struct {
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
}

// CartLine is one reserved line with its subtotal.
type CartLine struct {
	Book     Book   `json:"book"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// Cart is the HTTP representation of a shopper's cart.
type Cart struct {
	Shopper       string     `json:"shopper"`
	Lines         []CartLine `json:"lines"`
	TotalQuantity int        `json:"totalQuantity"`
	Total         string     `json:"total"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// Receipt is the HTTP representation of a checkout receipt.
type Receipt struct {
	ID           string     `json:"id"`
	Shopper      string     `json:"shopper"`
	Lines        []CartLine `json:"lines"`
	Quantity     int        `json:"quantity"`
	Total        string     `json:"total"`
	CheckedOutAt time.Time  `json:"checkedOutAt"`
}

// Facets lists the refinements available for a text search.
type Facets struct {
	Authors    []string `json:"authors"`
	Genres     []string `json:"genres"`
	Publishers []string `json:"publishers"`
	MinPrice   string   `json:"minPrice"`
	MaxPrice   string   `json:"maxPrice"`
}

// BookSearchResult is the response of GET /v1/books.
type BookSearchResult struct {
	Items  []StockEntry `json:"items"`
	Facets Facets       `json:"facets"`
}

// ReleaseResult reports how many units or carts were released.
type ReleaseResult struct {
	Released int `json:"released"`
}

// ToStockItemInput maps an intake payload into the application input.
func ToStockItemInput(payload StockIntake, idempotencyKey string) invtypes.StockItemInput {
	contributors := make([]invtypes.ContributorInput, 0, len(payload.Contributors))
	for _, c := range payload.Contributors {
		contributors = append(contributors, invtypes.ContributorInput{FirstName: c.FirstName, LastName: c.LastName})
	}
	return invtypes.StockItemInput{
		Book: invtypes.BookInput{
			ISBN:         payload.ISBN,
			Title:        payload.Title,
			Contributors: contributors,
			Publisher:    payload.Publisher,
			Genre:        payload.Genre,
			Price:        payload.Price,
			Description:  payload.Description,
			CoverURL:     payload.CoverURL,
			PublishedOn:  payload.PublishedOn,
		},
		Quantity:       payload.Quantity,
		IdempotencyKey: idempotencyKey,
	}
}

// FromBook converts a catalog book into its transport form.
func FromBook(book *catalog.Book) Book {
	if book == nil {
		return Book{Contributors: []Contributor{}, Authors: []string{}}
	}
	contributors := make([]Contributor, 0, len(book.Contributors))
	for _, c := range book.Contributors {
		contributors = append(contributors, Contributor(c))
	}
	return Book{
		ISBN:         book.ISBN,
		Title:        book.Title,
		Contributors: contributors,
		Authors:      book.ContributorNames(),
		Publisher:    book.Publisher,
		Genre:        book.Genre,
		Price:        Money(book.Price),
		Description:  book.Description,
		CoverURL:     book.CoverURL,
		PublishedOn:  book.PublishedOn,
	}
}

// FromBookView converts a catalog view with stock into its transport form.
func FromBookView(view *invtypes.BookView) BookDetail {
	return BookDetail{
		Book:      FromBook(view.Book),
		OnHand:    view.OnHand,
		CreatedAt: view.Metadata.CreatedAt,
		UpdatedAt: view.Metadata.UpdatedAt,
	}
}

// FromStockEntry converts a single ledger view.
func FromStockEntry(view *invtypes.StockEntryView) StockEntry {
	return StockEntry{Book: FromBook(view.Book), Quantity: view.Quantity}
}

// FromStockEntries converts ledger views preserving their order.
func FromStockEntries(views []invtypes.StockEntryView) []StockEntry {
	out := make([]StockEntry, 0, len(views))
	for i := range views {
		out = append(out, FromStockEntry(&views[i]))
	}
	return out
}

// FromQueryResult converts a query result and its facets.
func FromQueryResult(result *invtypes.QueryResult) BookSearchResult {
	return BookSearchResult{
		Items: FromStockEntries(result.Items),
		Facets: Facets{
			Authors:    nonNil(result.Facets.Authors),
			Genres:     nonNil(result.Facets.Genres),
			Publishers: nonNil(result.Facets.Publishers),
			MinPrice:   Money(result.Facets.MinPrice),
			MaxPrice:   Money(result.Facets.MaxPrice),
		},
	}
}

// FromCartView converts a cart summary.
func FromCartView(view *invtypes.CartView) Cart {
	cart := Cart{
		Shopper:       string(view.Shopper),
		Lines:         make([]CartLine, 0, len(view.Lines)),
		TotalQuantity: view.TotalQuantity,
		Total:         Money(view.Total),
	}
	for _, line := range view.Lines {
		cart.Lines = append(cart.Lines, CartLine{Book: FromBook(line.Book), Quantity: line.Quantity, Subtotal: Money(line.Subtotal)})
	}
	if !view.UpdatedAt.IsZero() {
		updated := view.UpdatedAt
		cart.UpdatedAt = &updated
	}
	return cart
}

// FromReceipt converts a checkout receipt.
func FromReceipt(receipt *domain.Receipt) Receipt {
	out := Receipt{
		ID:           receipt.ID,
		Shopper:      string(receipt.Owner),
		Lines:        make([]CartLine, 0, len(receipt.Lines)),
		Quantity:     receipt.Quantity,
		Total:        Money(receipt.Total),
		CheckedOutAt: receipt.CheckedOutAt,
	}
	for _, line := range receipt.Lines {
		out.Lines = append(out.Lines, CartLine{Book: FromBook(line.Book), Quantity: line.Quantity, Subtotal: Money(line.Subtotal())})
	}
	return out
}

// Money renders an amount with two decimal places.
func Money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
