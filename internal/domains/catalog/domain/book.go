package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Contributor is an author credited on a book.
type Contributor struct {
	FirstName string
	LastName  string
}

// FullName renders the contributor as "LastName, FirstName", the form used for search and facets.
func (c Contributor) FullName() string {
	first := strings.TrimSpace(c.FirstName)
	last := strings.TrimSpace(c.LastName)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return last + ", " + first
	}
}

// ParseContributor splits a display name such as "Harper Lee" on its last space.
func ParseContributor(display string) Contributor {
	display = strings.TrimSpace(display)
	idx := strings.LastIndex(display, " ")
	if idx < 0 {
		return Contributor{LastName: display}
	}
	return Contributor{FirstName: strings.TrimSpace(display[:idx]), LastName: strings.TrimSpace(display[idx+1:])}
}

// Book is the catalog item aggregate. It is treated as immutable once stocked.
type Book struct {
	ISBN         string
	Title        string
	Contributors []Contributor
	Publisher    string
	Genre        string
	Price        decimal.Decimal
	Description  string
	CoverURL     string
	PublishedOn  string
}

var (
	ErrInvalidISBN   = errors.New("book isbn is required")
	ErrInvalidTitle  = errors.New("book title is required")
	ErrNegativePrice = errors.New("book price must be greater or equal to zero")
)

// NewBook validates the invariants and builds a Book.
func NewBook(isbn, title string, contributors []Contributor, publisher, genre string, price decimal.Decimal) (*Book, error) {
	b := &Book{
		ISBN:         strings.TrimSpace(isbn),
		Title:        title,
		Contributors: append([]Contributor{}, contributors...),
		Publisher:    publisher,
		Genre:        genre,
		Price:        price,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate enforces the catalog invariants.
func (b *Book) Validate() error {
	if strings.TrimSpace(b.ISBN) == "" {
		return ErrInvalidISBN
	}
	if strings.TrimSpace(b.Title) == "" {
		return ErrInvalidTitle
	}
	if b.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ContributorNames returns the full names in credit order.
func (b *Book) ContributorNames() []string {
	names := make([]string, 0, len(b.Contributors))
	for _, c := range b.Contributors {
		names = append(names, c.FullName())
	}
	return names
}

// Clone returns a deep copy.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Contributors = append([]Contributor(nil), b.Contributors...)
	return &clone
}
