package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/shared/projection"
)

var ErrNotFound = errors.New("book not found")

// Repository persists catalog books keyed by ISBN.
type Repository interface {
	Save(ctx context.Context, book *domain.Book) (*projection.Projection[*domain.Book], error)
	GetByISBN(ctx context.Context, isbn string) (*projection.Projection[*domain.Book], error)
	Delete(ctx context.Context, isbn string) error
	// List returns every book in the order it was first saved.
	List(ctx context.Context) ([]*projection.Projection[*domain.Book], error)
}
