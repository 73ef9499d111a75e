package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog used for demos/tests.
type Repository struct {
	mu    sync.RWMutex
	books map[string]*storedBook
	order []string
	now   func() time.Time
}

type storedBook struct {
	book     *domain.Book
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory catalog.
func NewRepository() *Repository {
	return &Repository{
		books: map[string]*storedBook{},
		now:   time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Save inserts or replaces a book while maintaining metadata.
func (r *Repository) Save(_ context.Context, book *domain.Book) (*projection.Projection[*domain.Book], error) {
	if book == nil {
		return nil, errors.New("cannot save nil book")
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var metadata projection.Metadata
	if existing, ok := r.books[book.ISBN]; ok {
		metadata = existing.metadata
	} else {
		r.order = append(r.order, book.ISBN)
	}
	stored := &storedBook{book: book.Clone(), metadata: metadata.Touch(r.now())}
	r.books[book.ISBN] = stored
	return projectionCopy(stored), nil
}

// GetByISBN fetches a book if present.
func (r *Repository) GetByISBN(_ context.Context, isbn string) (*projection.Projection[*domain.Book], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.books[isbn]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(stored), nil
}

// Delete removes a book.
func (r *Repository) Delete(_ context.Context, isbn string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[isbn]; !ok {
		return ports.ErrNotFound
	}
	delete(r.books, isbn)
	for i, key := range r.order {
		if key == isbn {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns all books in insertion order.
func (r *Repository) List(_ context.Context) ([]*projection.Projection[*domain.Book], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*projection.Projection[*domain.Book], 0, len(r.order))
	for _, isbn := range r.order {
		list = append(list, projectionCopy(r.books[isbn]))
	}
	return list, nil
}

func projectionCopy(stored *storedBook) *projection.Projection[*domain.Book] {
	return projection.New(stored.book.Clone(), stored.metadata)
}
